package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/pkg/repository"
)

// System records and lists feedback.
type System interface {
	Handler() *Handler
	Create(ctx context.Context, contractID string, cmd CreateCommand) (*Feedback, error)
	List(ctx context.Context, contractID string) ([]Feedback, error)
}

type repo struct {
	db        *sql.DB
	contracts contracts.System
	logger    *slog.Logger
}

func New(db *sql.DB, contractsSys contracts.System, logger *slog.Logger) System {
	return &repo{
		db:        db,
		contracts: contractsSys,
		logger:    logger.With("system", "feedback"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, contractID string, cmd CreateCommand) (*Feedback, error) {
	cmd, err := cmd.Normalize()
	if err != nil {
		return nil, err
	}

	if _, err := r.contracts.Find(ctx, contractID); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO feedback(id, contract_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, contract_id, text, created_at`

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Feedback, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), contractID, cmd.Text}, scanFeedback)
	})
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", repository.MapError(err, contracts.ErrNotFound, err))
	}

	r.logger.Info("feedback recorded", "id", f.ID, "contract_id", contractID)
	return &f, nil
}

func (r *repo) List(ctx context.Context, contractID string) ([]Feedback, error) {
	if _, err := r.contracts.Find(ctx, contractID); err != nil {
		return nil, err
	}

	q := `
		SELECT id, contract_id, text, created_at
		FROM feedback
		WHERE contract_id = $1
		ORDER BY created_at DESC`

	items, err := repository.QueryMany(ctx, r.db, q, []any{contractID}, scanFeedback)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	return items, nil
}

func scanFeedback(s repository.Scanner) (Feedback, error) {
	var f Feedback
	err := s.Scan(&f.ID, &f.ContractID, &f.Text, &f.CreatedAt)
	return f, err
}
