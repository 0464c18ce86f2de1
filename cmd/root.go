package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/vocabdrill/internal/config"
	"github.com/abhisek/vocabdrill/internal/logger"
	"github.com/abhisek/vocabdrill/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vocabdrill",
	Short: "Vocabulary and sentence drills in the terminal",
	Long: `Vocabdrill quizzes you on vocabulary and sentences, grading free-text
answers by edit-distance similarity. Near misses are shown with the closest
canonical answer so you can accept or reject them.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database path or DSN (default: ~/.local/share/vocabdrill/vocabdrill.db)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: dev or prod")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers persistent flags over environment and defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("db"); v != "" {
		cfg.Store.DSN = v
	}
	if v, _ := flags.GetString("driver"); v != "" {
		cfg.Store.Driver = v
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
	if v, _ := flags.GetString("log-mode"); v != "" {
		cfg.LogMode = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDSN returns the configured DSN, or the default SQLite path.
func resolveDSN(cfg config.Config) (string, error) {
	if cfg.Store.DSN != "" {
		if cfg.Store.Driver == string(store.DriverSQLite) {
			if err := config.EnsureDir(cfg.Store.DSN); err != nil {
				return "", fmt.Errorf("create database directory: %w", err)
			}
		}
		return cfg.Store.DSN, nil
	}
	return config.DefaultDBPath()
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(ctx, store.Driver(cfg.Store.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newLogger builds the command logger. Interactive commands always log to
// a file so output does not corrupt the TUI.
func newLogger(cfg config.Config, interactive bool) (*logger.Logger, error) {
	path, err := logPath(cfg, interactive)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := config.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	return logger.New(cfg.LogMode, path)
}

func logPath(cfg config.Config, interactive bool) (string, error) {
	if cfg.LogFile != "" || !interactive {
		return cfg.LogFile, nil
	}
	p, err := config.DefaultLogPath()
	if err != nil {
		return "", fmt.Errorf("resolve log path: %w", err)
	}
	return p, nil
}
