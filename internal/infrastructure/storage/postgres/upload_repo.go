package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docgate/internal/domain/documents"
)

const uploadTable = "document_uploads"

var uploadColumns = ExtractDBColumns[documents.UploadRecord]()

// Compile-time check that UploadRepo implements documents.UploadRepository.
var _ documents.UploadRepository = (*UploadRepo)(nil)

// UploadRepo is the PostgreSQL upload ledger.
type UploadRepo struct {
	pool *Pool
}

// NewUploadRepo creates a new upload repository.
func NewUploadRepo(pool *Pool) *UploadRepo {
	return &UploadRepo{pool: pool}
}

func (r *UploadRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create records an upload.
func (r *UploadRepo) Create(ctx context.Context, record *documents.UploadRecord) error {
	q := r.builder().
		Insert(uploadTable).
		SetMap(StructToMap(record))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// ListAll returns the whole ledger in upload order.
func (r *UploadRepo) ListAll(ctx context.Context) ([]documents.UploadRecord, error) {
	q := r.builder().
		Select(uploadColumns...).
		From(uploadTable).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []documents.UploadRecord
	if err := pgxscan.Select(ctx, r.pool, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return records, nil
}

// ListRefs returns the ownership projection of the whole ledger.
func (r *UploadRepo) ListRefs(ctx context.Context) ([]documents.PathRef, error) {
	q := r.builder().
		Select("full_path", "uploaded_by").
		From(uploadTable)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var refs []documents.PathRef
	if err := pgxscan.Select(ctx, r.pool, &refs, sql, args...); err != nil {
		return nil, fmt.Errorf("list upload refs: %w", err)
	}
	return refs, nil
}

// DeleteByPath removes the tracking record for a path. Deleting an untracked
// path is a no-op.
func (r *UploadRepo) DeleteByPath(ctx context.Context, fullPath string) error {
	q := r.builder().
		Delete(uploadTable).
		Where(squirrel.Eq{"full_path": fullPath})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
