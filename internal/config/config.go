package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/textmatch"
)

// Config holds all runtime configuration.
type Config struct {
	Grading grading.Config
	Store   StoreConfig
	AMQP    AMQPConfig
	Redis   RedisConfig

	// LogMode is "dev" (console, debug) or "prod" (JSON, info).
	LogMode string

	// LogFile receives log output. Empty means DefaultLogPath for the
	// interactive drill and stderr for other commands.
	LogFile string
}

// StoreConfig selects the SQL backend.
type StoreConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string // file path / DSN; empty means DefaultDBPath for sqlite
}

// AMQPConfig enables publishing grade events to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL   string
	Queue string // Default: "vocabdrill.grades"
}

// RedisConfig enables the Redis bookmark cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Grading: grading.DefaultConfig(),
		Store: StoreConfig{
			Driver: "sqlite",
		},
		AMQP: AMQPConfig{
			Queue: "vocabdrill.grades",
		},
		LogMode: "dev",
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("VOCABDRILL_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("VOCABDRILL_THRESHOLD: %w", err)
		}
		cfg.Grading.Threshold = f
	}
	if v := os.Getenv("VOCABDRILL_DECAY_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("VOCABDRILL_DECAY_FACTOR: %w", err)
		}
		cfg.Grading.DecayFactor = f
	}
	if v := os.Getenv("VOCABDRILL_MATCHING_MODEL"); v != "" {
		m, err := textmatch.ParseModel(v)
		if err != nil {
			return cfg, fmt.Errorf("VOCABDRILL_MATCHING_MODEL: %w", err)
		}
		cfg.Grading.Model = m
	}

	if v := os.Getenv("VOCABDRILL_DB_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("VOCABDRILL_DB"); v != "" {
		cfg.Store.DSN = v
	}

	if v := os.Getenv("VOCABDRILL_AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("VOCABDRILL_AMQP_QUEUE"); v != "" {
		cfg.AMQP.Queue = v
	}

	if v := os.Getenv("VOCABDRILL_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("VOCABDRILL_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("VOCABDRILL_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("VOCABDRILL_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	if v := os.Getenv("VOCABDRILL_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("VOCABDRILL_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg, nil
}

// Validate checks the grading tuning and the store driver.
func (c Config) Validate() error {
	if err := c.Grading.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("VOCABDRILL_DB is required for the postgres driver")
	}
	if c.AMQP.URL != "" && c.AMQP.Queue == "" {
		return fmt.Errorf("VOCABDRILL_AMQP_QUEUE must not be empty when AMQP is enabled")
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. $XDG_DATA_HOME/vocabdrill/vocabdrill.db
// 2. ~/.local/share/vocabdrill/vocabdrill.db
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "vocabdrill", "vocabdrill.db")
	return p, EnsureDir(p)
}

// DefaultLogPath is the log file used by the interactive drill when no
// log file is configured. It sits next to the default database.
func DefaultLogPath() (string, error) {
	db, err := DefaultDBPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(db), "vocabdrill.log"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
