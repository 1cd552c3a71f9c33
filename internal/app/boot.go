package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"lantern/internal/config"
	"lantern/internal/logger"
	"lantern/internal/nodes"
	"lantern/internal/store"
)

const Version = "0.1.0"

var (
	Config *config.Config
	Store  *store.Store
	Logger *slog.Logger
	Nodes  *nodes.Manager
)

func Boot(configPath string, quiet bool) error {
	if configPath == "" {
		configPath = "config.yml"
	}

	// Load the configuration
	newConfig, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// If all successful, swap globals and cleanup.
	Config = newConfig

	// Setup Logger
	Logger = logger.Setup(Config.Loggers, quiet)

	// Prepare the data store
	dir := Config.Paths.Data
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data path: %w", err)
	}

	newStore, err := store.New(filepath.Clean(filepath.Join(dir, "lantern.sqlite3")), quiet)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	if Store != nil {
		if err := Store.Close(); err != nil {
			Logger.Error("Failed to close existing store", "err", err)
		}
	}
	Store = newStore

	Nodes = nodes.NewManager(Config.MaxNodes)

	if !quiet {
		Logger.Info("Successfully loaded configuration", "file", configPath)
	}

	return nil
}
