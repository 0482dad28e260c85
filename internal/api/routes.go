package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/pkg/openapi"
	"github.com/JaimeStill/covenant/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	routes.Register(
		mux,
		domain.Contracts.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Vectors.Handler().Routes(),
		domain.Analyses.Handler().Routes(),
		domain.Feedback.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	)

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
