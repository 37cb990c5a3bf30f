package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docgate/internal/core/id"
	"docgate/internal/domain/documents"
)

const (
	workspaceTable     = "workspaces"
	workspaceUserTable = "workspace_users"
	workspaceDocTable  = "workspace_documents"
)

// Compile-time check that WorkspaceRepo implements documents.WorkspaceRepository.
var _ documents.WorkspaceRepository = (*WorkspaceRepo)(nil)

// WorkspaceRepo answers workspace reachability queries for access resolution.
type WorkspaceRepo struct {
	pool *Pool
}

// NewWorkspaceRepo creates a new workspace repository.
func NewWorkspaceRepo(pool *Pool) *WorkspaceRepo {
	return &WorkspaceRepo{pool: pool}
}

func (r *WorkspaceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AccessibleWorkspaceIDs returns workspaces the user created or belongs to.
func (r *WorkspaceRepo) AccessibleWorkspaceIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	q := r.builder().
		Select("w.id").
		From(workspaceTable + " w").
		LeftJoin(workspaceUserTable + " wu ON wu.workspace_id = w.id").
		Where(squirrel.Or{
			squirrel.Eq{"w.created_by": userID},
			squirrel.Eq{"wu.user_id": userID},
		}).
		GroupBy("w.id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.pool, &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list accessible workspaces: %w", err)
	}
	return ids, nil
}

// ListDocPaths returns document paths associated with the given workspaces.
func (r *WorkspaceRepo) ListDocPaths(ctx context.Context, workspaceIDs []id.ID) ([]string, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil
	}

	q := r.builder().
		Select("DISTINCT doc_path").
		From(workspaceDocTable).
		Where(squirrel.Eq{"workspace_id": workspaceIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var paths []string
	if err := pgxscan.Select(ctx, r.pool, &paths, sql, args...); err != nil {
		return nil, fmt.Errorf("list workspace doc paths: %w", err)
	}
	return paths, nil
}
