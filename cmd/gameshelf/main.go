package main

import (
	"fmt"
	"os"

	"github.com/meur/gameshelf/internal/config"
	"github.com/meur/gameshelf/internal/shelf"
	"github.com/meur/gameshelf/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gameshelf",
	Short: "Personal game library: categories, ratings and leaderboards",
	Long: `gameshelf keeps a personal library of games and franchises.

Games are sorted into current, next, finished and favorites lists, rated
from 0 to 10 and ranked on franchise and game leaderboards. Run "serve" to
start the JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(serveCmd, seedCmd, importCmd, metadataCmd, leaderboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openShelf opens the configured backend and loads the shelf from it
func openShelf() (*shelf.Shelf, error) {
	kv, err := storage.Open(cfg.Storage.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("storage opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", cfg.Storage.Path))
	return shelf.New(storage.New(kv, logger), logger), nil
}
