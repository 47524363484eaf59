package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "trims whitespace",
			input:    "  filename  ",
			expected: "filename",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for only special chars",
			input:    "<>:?*",
			expected: "Untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"png", "png"},
		{".jpeg", "jpeg"},
		{"JPG", "jpg"},
		{"../../etc/passwd", "etcpasswd"},
		{"we bp", "webp"},
		{"", "jpg"},
		{"...", "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeExtension(tt.input))
		})
	}
}

func TestBackupFilename(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)

	assert.Equal(t, "kotobi_backup_07-03-2024_09-05-03.json", BackupFilename("kotobi_backup", ts))
	assert.Equal(t, "kotobi_backup_07-03-2024_09-05-03_ab12cd34.json", SuffixedBackupFilename("kotobi_backup", ts, "ab12cd34"))
	assert.Equal(t, "my backup_07-03-2024_09-05-03.json", BackupFilename("my/ backup", ts))
}
