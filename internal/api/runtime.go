package api

import (
	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/infrastructure"
	"github.com/JaimeStill/covenant/pkg/pagination"
)

// Runtime extends Infrastructure with the settings API systems consume.
type Runtime struct {
	*infrastructure.Infrastructure
	Config     *config.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Config:     cfg,
		Pagination: cfg.API.Pagination,
	}
}
