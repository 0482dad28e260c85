package contracts

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/JaimeStill/covenant/pkg/formatting"
	"github.com/JaimeStill/covenant/pkg/pagination"
	"github.com/JaimeStill/covenant/pkg/query"
	"github.com/JaimeStill/covenant/pkg/repository"
	"github.com/JaimeStill/covenant/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a contract repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "contracts"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Contract], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ID", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanContract)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Contract, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanContract)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Contract, error) {
	id := NewID(cmd.Filename, r.now())
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(
		ctx, key,
		bytes.NewReader(cmd.Data), int64(len(cmd.Data)),
		cmd.ContentType,
	); err != nil {
		return nil, fmt.Errorf("upload contract blob: %w", err)
	}

	insert := `
		INSERT INTO contracts(id, filename, content_type, size_bytes, page_count, storage_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertArgs := []any{
		id,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
		string(StatusUploaded),
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Contract, error) {
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return Contract{}, err
		}
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, scanContract)
	})

	if err != nil {
		if delErr := r.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contract created",
		"id", c.ID,
		"filename", c.Filename,
		"size", formatting.FormatBytes(int64(len(cmd.Data)), 1),
	)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	c, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM contracts WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, c.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", c.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("contract deleted", "id", id)
	return nil
}

func (r *repo) Content(ctx context.Context, id string) (*Contract, []byte, error) {
	c, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := r.storage.Download(ctx, c.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download contract blob: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read contract blob: %w", err)
	}

	return c, data, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE contracts SET status = $1, updated_at = NOW() WHERE id = $2",
			string(status), id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contract status updated", "id", id, "status", status)
	return nil
}

func (r *repo) History(ctx context.Context, limit int) ([]Contract, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildPage(1, limit)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanContract)
	if err != nil {
		return nil, fmt.Errorf("query contract history: %w", err)
	}
	return items, nil
}

func buildStorageKey(id, filename string) string {
	return fmt.Sprintf("contracts/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "contract"
	}
	return url.PathEscape(name)
}
