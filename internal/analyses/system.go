package analyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/clauses"
	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/pkg/pagination"
)

// HistoryLimit is the number of contracts returned by History.
const HistoryLimit = 10

// Runner executes the analysis pipeline over a contract file.
type Runner interface {
	Run(ctx context.Context, filename string, data []byte, s Settings) (Outcome, error)
}

// Indexer stores embeddings for an analyzed contract.
type Indexer interface {
	IndexContract(
		ctx context.Context,
		contractID, text string,
		extracted clauses.Result,
		outputs map[string]agents.Result,
	) (int, error)
}

// System defines analysis operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Findings(ctx context.Context, id uuid.UUID) ([]Finding, error)

	// Run analyzes a stored contract and persists the report. The contract
	// moves to analyzing, then to analyzed or failed.
	Run(ctx context.Context, contractID string, cmd RunCommand) (*Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error

	History(ctx context.Context) ([]contracts.Contract, error)
	Stats(ctx context.Context) (*Stats, error)
}
