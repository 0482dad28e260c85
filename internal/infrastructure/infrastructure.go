// Package infrastructure assembles the shared systems every covenant
// module depends on: logging, the contract database, and blob storage.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/pkg/database"
	"github.com/JaimeStill/covenant/pkg/lifecycle"
	"github.com/JaimeStill/covenant/pkg/storage"
)

// Infrastructure holds the systems shared by the API and background work.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New builds the shared systems from cfg without starting them.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := cfg.Logging.NewLogger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}, nil
}

// Start registers database and storage hooks with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("start database: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("start storage: %w", err)
	}
	return nil
}
