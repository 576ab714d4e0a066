package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

const userColumns = `id, email, phone_number, full_name, hashed_password,
	is_active, is_verified, is_superuser, created_at, updated_at`

// UserStore implements storage.UserStore on Postgres.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PhoneNumber, &u.FullName, &u.HashedPassword,
		&u.IsActive, &u.IsVerified, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, storage.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *UserStore) Select(ctx context.Context, q storage.Query) ([]model.User, error) {
	query, args, err := buildSelect(userColumns, "users", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) Insert(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	row := s.pool.QueryRow(ctx, `
INSERT INTO users (id, email, phone_number, full_name, hashed_password,
	is_active, is_verified, is_superuser, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+userColumns,
		u.ID, u.Email, u.PhoneNumber, u.FullName, u.HashedPassword,
		u.IsActive, u.IsVerified, u.IsSuperuser, u.CreatedAt, u.UpdatedAt,
	)
	return scanUser(row)
}

func (s *UserStore) Save(ctx context.Context, u model.User) (model.User, error) {
	u.UpdatedAt = time.Now().UTC()

	row := s.pool.QueryRow(ctx, `
UPDATE users SET email = $2, phone_number = $3, full_name = $4,
	hashed_password = $5, is_active = $6, is_verified = $7,
	is_superuser = $8, updated_at = $9
WHERE id = $1
RETURNING `+userColumns,
		u.ID, u.Email, u.PhoneNumber, u.FullName, u.HashedPassword,
		u.IsActive, u.IsVerified, u.IsSuperuser, u.UpdatedAt,
	)
	return scanUser(row)
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
