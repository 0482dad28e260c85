package api

import (
	"context"
	"fmt"

	"github.com/JaimeStill/covenant/internal/analyses"
	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/internal/feedback"
	"github.com/JaimeStill/covenant/internal/prompts"
	"github.com/JaimeStill/covenant/internal/vectors"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Analyses  analyses.System
	Contracts contracts.System
	Feedback  feedback.System
	Prompts   prompts.System
	Vectors   vectors.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(ctx context.Context, runtime *Runtime) (*Domain, error) {
	cfg := runtime.Config
	db := runtime.Database.Connection()

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	contractsSystem := contracts.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	var embedder vectors.Embedder
	if cfg.Vectors.Enabled {
		e, err := vectors.NewGenAIEmbedder(
			ctx,
			cfg.Vectors.APIKey,
			cfg.Vectors.Model,
			cfg.Vectors.Dimensions,
		)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		embedder = e
	}

	vectorsSystem := vectors.New(db, embedder, cfg.Vectors.TopK, runtime.Logger)

	pipeline, err := analyses.BuildPipeline(
		&cfg.Agent,
		&cfg.Analysis,
		promptsSystem,
		runtime.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build analysis pipeline: %w", err)
	}

	var index analyses.Indexer
	if embedder != nil {
		index = vectorsSystem
	}

	analysesSystem := analyses.New(
		db,
		pipeline,
		contractsSystem,
		index,
		analyses.SettingsFromConfig(&cfg.Analysis),
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Analyses:  analysesSystem,
		Contracts: contractsSystem,
		Feedback:  feedback.New(db, contractsSystem, runtime.Logger),
		Prompts:   promptsSystem,
		Vectors:   vectorsSystem,
	}, nil
}
