package contracts

import (
	"context"

	"github.com/JaimeStill/covenant/pkg/pagination"
)

// System defines contract intake and lookup operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Contract], error)

	Find(ctx context.Context, id string) (*Contract, error)
	Create(ctx context.Context, cmd CreateCommand) (*Contract, error)
	Delete(ctx context.Context, id string) error

	// Content returns the stored file bytes of a contract.
	Content(ctx context.Context, id string) (*Contract, []byte, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// History returns the most recently uploaded contracts with their
	// latest analysis headline.
	History(ctx context.Context, limit int) ([]Contract, error)
}
