package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
	// Anything that may not appear in a file extension
	invalidExtensionChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// DefaultCoverExtension is used when a cover carries no usable extension hint.
const DefaultCoverExtension = "jpg"

// backupTimeLayout renders DD-MM-YYYY_hh-mm-ss.
const backupTimeLayout = "02-01-2006_15-04-05"

// SanitizeFilename makes a user-supplied name safe to use as a file name
// component: invalid characters are removed, whitespace is collapsed and the
// result is capped at 200 bytes.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Limit length (most filesystems support 255, but leave room for suffixes)
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// SanitizeExtension strips a leading dot and every non-alphanumeric character
// from an extension hint. Empty results fall back to DefaultCoverExtension.
func SanitizeExtension(ext string) string {
	ext = invalidExtensionChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return DefaultCoverExtension
	}
	return strings.ToLower(ext)
}

// BackupFilename returns "<prefix>_DD-MM-YYYY_hh-mm-ss.json" for t.
func BackupFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", SanitizeFilename(prefix), t.Format(backupTimeLayout))
}

// SuffixedBackupFilename is BackupFilename with a disambiguating suffix before
// the extension, used when two exports land on the same second.
func SuffixedBackupFilename(prefix string, t time.Time, suffix string) string {
	return fmt.Sprintf("%s_%s_%s.json", SanitizeFilename(prefix), t.Format(backupTimeLayout), suffix)
}
