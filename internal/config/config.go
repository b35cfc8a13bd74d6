// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pable/wintracker/internal/publish"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath           string
	DatabaseURL      string
	Port             int
	TemplatePath     string
	ReportDir        string
	SnapshotInterval time.Duration
	R2               publish.R2Config
}

// DefaultPort is the HTTP port when PORT is unset.
const DefaultPort = 5200

// Load reads .env files (missing ones are ignored) and then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		DBPath:       getenv("WINTRACKER_DB"),
		DatabaseURL:  getenv("DATABASE_URL"),
		Port:         DefaultPort,
		TemplatePath: getenv("WINTRACKER_TEMPLATE"),
		ReportDir:    getenv("REPORT_DIR"),
		R2: publish.R2Config{
			AccountID:       getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      getenv("CDN_BASE_URL"),
		},
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid SNAPSHOT_INTERVAL %q", v)
		}
		cfg.SnapshotInterval = d
	}
	return cfg, nil
}

// DefaultDBPath is ~/.wintracker/wintracker.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".wintracker", "wintracker.db")
}
