package vectors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/clauses"
	"github.com/JaimeStill/covenant/pkg/repository"
)

// System stores contract embeddings and answers similarity queries.
type System interface {
	Handler() *Handler

	// IndexContract embeds and upserts the contract, clause, and agent
	// output vectors for contractID. It returns the number of records stored.
	IndexContract(
		ctx context.Context,
		contractID, text string,
		extracted clauses.Result,
		outputs map[string]agents.Result,
	) (int, error)

	SearchSimilar(ctx context.Context, text string, topK int) ([]Match, error)
	SimilarTo(ctx context.Context, contractID string, topK int) ([]Match, error)
	Delete(ctx context.Context, contractID string) error
}

type repo struct {
	db       *sql.DB
	embedder Embedder
	topK     int
	logger   *slog.Logger
}

// New creates the vector index. A nil embedder yields a System whose
// embedding operations return ErrDisabled.
func New(db *sql.DB, embedder Embedder, topK int, logger *slog.Logger) System {
	return &repo{
		db:       db,
		embedder: embedder,
		topK:     topK,
		logger:   logger.With("system", "vectors"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.topK, r.logger)
}

func (r *repo) IndexContract(
	ctx context.Context,
	contractID, text string,
	extracted clauses.Result,
	outputs map[string]agents.Result,
) (int, error) {
	if r.embedder == nil {
		return 0, ErrDisabled
	}

	records, err := Records(contractID, text, extracted, outputs)
	if err != nil {
		return 0, err
	}

	if err := Embed(ctx, r.embedder, records); err != nil {
		return 0, fmt.Errorf("embed records: %w", err)
	}

	q := `
		INSERT INTO contract_vectors(id, contract_id, kind, clause_index, agent, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			clause_index = EXCLUDED.clause_index,
			agent = EXCLUDED.agent,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			indexed_at = NOW()`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, rec := range records {
			var agent *string
			if rec.Agent != "" {
				agent = &rec.Agent
			}
			if _, err := tx.ExecContext(
				ctx, q,
				rec.ID, rec.ContractID, string(rec.Kind), rec.ClauseIndex, agent, rec.Text, Encode(rec.Vector),
			); err != nil {
				return struct{}{}, fmt.Errorf("upsert vector %s: %w", rec.ID, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("contract indexed", "contract_id", contractID, "records", len(records))
	return len(records), nil
}

func (r *repo) SearchSimilar(ctx context.Context, text string, topK int) ([]Match, error) {
	if r.embedder == nil {
		return nil, ErrDisabled
	}

	vecs, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(vecs))
	}

	candidates, err := r.contractVectors(ctx, "")
	if err != nil {
		return nil, err
	}

	return Rank(vecs[0], candidates, r.resolveTopK(topK)), nil
}

func (r *repo) SimilarTo(ctx context.Context, contractID string, topK int) ([]Match, error) {
	if r.embedder == nil {
		return nil, ErrDisabled
	}

	q := `SELECT id, contract_id, kind, clause_index, agent, text, embedding
		FROM contract_vectors WHERE id = $1 AND kind = $2`

	target, err := repository.QueryOne(ctx, r.db, q, []any{contractID, string(KindContract)}, scanRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotIndexed
		}
		return nil, fmt.Errorf("load contract vector: %w", err)
	}

	candidates, err := r.contractVectors(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return Rank(target.Vector, candidates, r.resolveTopK(topK)), nil
}

func (r *repo) Delete(ctx context.Context, contractID string) error {
	if _, err := r.db.ExecContext(
		ctx,
		"DELETE FROM contract_vectors WHERE contract_id = $1",
		contractID,
	); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}

// contractVectors loads every contract-kind vector except exclude.
func (r *repo) contractVectors(ctx context.Context, exclude string) ([]Record, error) {
	q := `SELECT id, contract_id, kind, clause_index, agent, text, embedding
		FROM contract_vectors WHERE kind = $1 AND contract_id <> $2`

	records, err := repository.QueryMany(ctx, r.db, q, []any{string(KindContract), exclude}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query contract vectors: %w", err)
	}
	return records, nil
}

func (r *repo) resolveTopK(topK int) int {
	if topK > 0 {
		return topK
	}
	return r.topK
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		rec   Record
		kind  string
		agent sql.NullString
		index sql.NullInt32
		raw   []byte
	)

	if err := s.Scan(&rec.ID, &rec.ContractID, &kind, &index, &agent, &rec.Text, &raw); err != nil {
		return Record{}, err
	}

	rec.Kind = Kind(kind)
	rec.Agent = agent.String
	if index.Valid {
		i := int(index.Int32)
		rec.ClauseIndex = &i
	}

	vec, err := Decode(raw)
	if err != nil {
		return Record{}, err
	}
	rec.Vector = vec
	return rec, nil
}
