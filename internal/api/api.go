// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/infrastructure"
	"github.com/JaimeStill/covenant/pkg/middleware"
	"github.com/JaimeStill/covenant/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the issuer is contacted during construction.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(ctx, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	return m, nil
}
