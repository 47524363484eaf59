package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Audit
		Global
		Database
		Covers
		Export
		Backup
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Audit struct {
		Dir           string
		RetentionDays int // Days to keep saved import documents (default: 30)
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Covers struct {
		Dir          string // Managed cover-storage area
		FetchTimeout time.Duration
	}
	Export struct {
		Dir    string
		Prefix string
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 0 * * *" = daily at midnight
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// getCoversDir returns COVERS_DIR, or a covers directory next to the database
func getCoversDir(v *viper.Viper) string {
	if dir := v.GetString("COVERS_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(v.GetString("DATABASE_PATH")), coversSubdir)
}

// applyEnvFile layers KEY=VALUE pairs from a dotenv file over the built-in
// defaults. Variables set in the real environment still take precedence.
func applyEnvFile(v *viper.Viper, path string) {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Config: ignoring env file %s: %v", path, err)
		}
		return
	}
	for key, value := range values {
		v.SetDefault(strings.ToLower(key), value)
	}
	log.Printf("Config: loaded %d settings from %s", len(values), path)
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("covers_dir", "")
	v.SetDefault("cover_fetch_timeout", "30s")
	v.SetDefault("export_dir", "./exports")
	v.SetDefault("export_prefix", DefaultExportPrefix)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 0 * * *") // Daily at midnight

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("env_file", ".env")
	applyEnvFile(v, v.GetString("ENV_FILE"))

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Covers: Covers{
			Dir:          getCoversDir(v),
			FetchTimeout: v.GetDuration("COVER_FETCH_TIMEOUT"),
		},
		Export: Export{
			Dir:    v.GetString("EXPORT_DIR"),
			Prefix: v.GetString("EXPORT_PREFIX"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}

// SetDatabasePath points the config at another database file. A covers
// directory that was derived from the old path follows the database.
func (c *Config) SetDatabasePath(path string) {
	if c.Covers.Dir == filepath.Join(filepath.Dir(c.Database.Path), coversSubdir) {
		c.Covers.Dir = filepath.Join(filepath.Dir(path), coversSubdir)
	}
	c.Database.Path = path
}
