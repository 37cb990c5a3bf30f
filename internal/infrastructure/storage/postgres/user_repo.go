package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/auth"
)

const userTable = "users"

var userColumns = ExtractDBColumns[auth.LocalUser]()

// Compile-time check that UserRepo implements auth.UserRepository.
var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo is the PostgreSQL store for managed local users.
type UserRepo struct {
	pool *Pool
}

// NewUserRepo creates a new user repository.
func NewUserRepo(pool *Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *UserRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(userColumns...).From(userTable)
}

// Create inserts a new local user.
func (r *UserRepo) Create(ctx context.Context, user *auth.LocalUser) error {
	q := r.builder().
		Insert(userTable).
		SetMap(StructToMap(user))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username, the reconciliation key.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*auth.LocalUser, error) {
	q := r.baseSelect().Where(squirrel.Eq{"username": username}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.LocalUser
	if err := pgxscan.Get(ctx, r.pool, &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", username)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// Update persists role and suspension changes.
func (r *UserRepo) Update(ctx context.Context, user *auth.LocalUser) error {
	q := r.builder().
		Update(userTable).
		Set("email", user.Email).
		Set("role", user.Role).
		Set("suspended", user.Suspended).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}
	return nil
}
