package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/internal/contracts"
	"github.com/JaimeStill/covenant/internal/report"
	"github.com/JaimeStill/covenant/internal/vectors"
	"github.com/JaimeStill/covenant/pkg/pagination"
	"github.com/JaimeStill/covenant/pkg/query"
	"github.com/JaimeStill/covenant/pkg/repository"
)

type repo struct {
	db         *sql.DB
	runner     Runner
	contracts  contracts.System
	index      Indexer
	defaults   Settings
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an analysis repository. index may be nil when vector
// indexing is disabled.
func New(
	db *sql.DB,
	runner Runner,
	contractsSys contracts.System,
	index Indexer,
	defaults Settings,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		runner:     runner,
		contracts:  contractsSys,
		index:      index,
		defaults:   defaults,
		logger:     logger.With("system", "analyses"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Analysis], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ContractID", "ContractType", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAnalysis)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Findings(ctx context.Context, id uuid.UUID) ([]Finding, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(findingProjection, findingSort...).
		WhereEquals("AnalysisID", id).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanFinding)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	return items, nil
}

func (r *repo) Run(ctx context.Context, contractID string, cmd RunCommand) (*Analysis, error) {
	settings, err := cmd.Resolve(r.defaults)
	if err != nil {
		return nil, err
	}

	c, data, err := r.contracts.Content(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if err := r.contracts.UpdateStatus(ctx, contractID, contracts.StatusAnalyzing); err != nil {
		return nil, err
	}

	out, err := r.runner.Run(ctx, c.Filename, data, settings)
	if err != nil {
		r.markFailed(ctx, contractID, err)
		return nil, fmt.Errorf("analyze contract %s: %w", contractID, err)
	}

	a, err := r.persist(ctx, contractID, settings, out.Report)
	if err != nil {
		r.markFailed(ctx, contractID, err)
		return nil, fmt.Errorf("persist analysis for %s: %w", contractID, err)
	}

	r.indexContract(ctx, contractID, out)

	r.logger.Info("contract analyzed",
		"id", a.ID,
		"contract_id", contractID,
		"contract_type", a.ContractType,
		"risk_score", a.RiskScore,
	)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM analyses WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("analysis deleted", "id", id)
	return nil
}

func (r *repo) History(ctx context.Context) ([]contracts.Contract, error) {
	return r.contracts.History(ctx, HistoryLimit)
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	q := `
		SELECT
			(SELECT COUNT(*) FROM contracts),
			(SELECT COUNT(*) FROM analyses),
			COALESCE((SELECT AVG(risk_score) FROM analyses), 0)`

	var s Stats
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalContracts,
		&s.TotalAnalyses,
		&s.AverageRisk,
	); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	s.AverageRisk = report.Round2(s.AverageRisk)
	return &s, nil
}

func (r *repo) persist(
	ctx context.Context,
	contractID string,
	s Settings,
	final report.FinalReport,
) (Analysis, error) {
	focus := s.Focus
	if focus == nil {
		focus = []string{}
	}
	focusJSON, err := json.Marshal(focus)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal focus: %w", err)
	}

	reportJSON, err := json.Marshal(final)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal report: %w", err)
	}

	insertQ := `
		INSERT INTO analyses(
			id, contract_id, contract_type, tone, focus, risk_threshold,
			summary, confidence, risk_score, risk_level, exceeds_threshold, report
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, contract_id, contract_type, tone, focus, risk_threshold,
				  summary, confidence, risk_score, risk_level, exceeds_threshold,
				  report, analyzed_at`

	insertArgs := []any{
		uuid.New(),
		contractID,
		final.ContractClassification.ContractType,
		final.Tone,
		focusJSON,
		final.RiskThreshold,
		final.Summary,
		final.Confidence,
		final.RiskScore,
		final.RiskLevel,
		final.ExceedsThreshold,
		reportJSON,
	}

	findingQ := `
		INSERT INTO findings(id, analysis_id, contract_id, domain, issue, agent, severity, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Analysis, error) {
		a, err := repository.QueryOne(ctx, tx, insertQ, insertArgs, scanAnalysis)
		if err != nil {
			return Analysis{}, fmt.Errorf("insert analysis: %w", repository.MapError(err, contracts.ErrNotFound, ErrDuplicate))
		}

		for _, domain := range slices.Sorted(maps.Keys(final.Domains)) {
			for _, f := range final.Domains[domain] {
				if _, err := tx.ExecContext(
					ctx, findingQ,
					uuid.New(), a.ID, contractID, domain,
					f.Issue, f.Agent, string(f.Severity), f.Confidence,
				); err != nil {
					return Analysis{}, fmt.Errorf("insert finding: %w", err)
				}
			}
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE contracts SET status = $1, updated_at = NOW() WHERE id = $2",
			string(contracts.StatusAnalyzed), contractID,
		); err != nil {
			return Analysis{}, fmt.Errorf("update contract status: %w", err)
		}

		return a, nil
	})
}

// markFailed records a failed run. It runs detached from ctx so a cancelled
// request still leaves the contract in a terminal status.
func (r *repo) markFailed(ctx context.Context, contractID string, cause error) {
	ctx = context.WithoutCancel(ctx)

	if err := r.contracts.UpdateStatus(ctx, contractID, contracts.StatusFailed); err != nil {
		r.logger.Error("mark contract failed", "contract_id", contractID, "error", err)
	}
	r.logger.Warn("analysis failed", "contract_id", contractID, "error", cause)
}

func (r *repo) indexContract(ctx context.Context, contractID string, out Outcome) {
	if r.index == nil {
		return
	}

	n, err := r.index.IndexContract(ctx, contractID, out.Document.Text, out.Clauses, out.Report.Analysis)
	switch {
	case errors.Is(err, vectors.ErrDisabled):
		return
	case err != nil:
		r.logger.Warn("vector indexing failed", "contract_id", contractID, "error", err)
	default:
		r.logger.Debug("vectors indexed", "contract_id", contractID, "records", n)
	}
}
