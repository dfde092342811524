package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvFFmpeg  = "MONTAGE_FFMPEG"
	EnvFFprobe = "MONTAGE_FFPROBE"
	EnvWorkers = "MONTAGE_WORKERS"
	EnvTempDir = "MONTAGE_TEMP_DIR"
	EnvLogDir  = "MONTAGE_LOG_DIR"
)

// LoadEnv loads variables from the given dotenv files (".env" when none
// are given) into the process environment. Missing files are ignored and
// variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config fields from MONTAGE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvFFmpeg); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv(EnvFFprobe); v != "" {
		c.FFprobePath = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidWorkers, EnvWorkers, v)
		}
		c.Workers = n
	}
	return nil
}
