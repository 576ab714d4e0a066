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

const facilityColumns = `id, code, name, address, lat, lng, map_url, phone,
	website, created_by_id, modified_by_id, created_at, updated_at`

// FacilityStore implements storage.FacilityStore on Postgres.
type FacilityStore struct {
	pool *pgxpool.Pool
}

func NewFacilityStore(pool *pgxpool.Pool) *FacilityStore {
	return &FacilityStore{pool: pool}
}

func scanFacility(row pgx.Row) (model.Facility, error) {
	var f model.Facility
	err := row.Scan(
		&f.ID, &f.Code, &f.Name, &f.Address, &f.Lat, &f.Lng, &f.MapURL,
		&f.Phone, &f.Website, &f.CreatedByID, &f.ModifiedByID,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Facility{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Facility{}, fmt.Errorf("scan facility: %w", err)
	}
	return f, nil
}

func (s *FacilityStore) Get(ctx context.Context, id uuid.UUID) (model.Facility, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE id = $1`, id)
	return scanFacility(row)
}

func (s *FacilityStore) GetByCode(ctx context.Context, code string) (model.Facility, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE code = $1`, code)
	return scanFacility(row)
}

func (s *FacilityStore) GetByName(ctx context.Context, name string) (model.Facility, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE name = $1`, name)
	return scanFacility(row)
}

func (s *FacilityStore) Select(ctx context.Context, q storage.Query) ([]model.Facility, error) {
	query, args, err := buildSelect(facilityColumns, "facilities", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select facilities: %w", err)
	}
	defer rows.Close()

	facilities := make([]model.Facility, 0, q.Limit)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

func (s *FacilityStore) Insert(ctx context.Context, f model.Facility) (model.Facility, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	row := s.pool.QueryRow(ctx, `
INSERT INTO facilities (id, code, name, address, lat, lng, map_url, phone,
	website, created_by_id, modified_by_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING `+facilityColumns,
		f.ID, f.Code, f.Name, f.Address, f.Lat, f.Lng, f.MapURL, f.Phone,
		f.Website, f.CreatedByID, f.ModifiedByID, f.CreatedAt, f.UpdatedAt,
	)
	return scanFacility(row)
}

func (s *FacilityStore) Save(ctx context.Context, f model.Facility) (model.Facility, error) {
	f.UpdatedAt = time.Now().UTC()

	row := s.pool.QueryRow(ctx, `
UPDATE facilities SET code = $2, name = $3, address = $4, lat = $5, lng = $6,
	map_url = $7, phone = $8, website = $9, modified_by_id = $10,
	updated_at = $11
WHERE id = $1
RETURNING `+facilityColumns,
		f.ID, f.Code, f.Name, f.Address, f.Lat, f.Lng, f.MapURL, f.Phone,
		f.Website, f.ModifiedByID, f.UpdatedAt,
	)
	return scanFacility(row)
}

func (s *FacilityStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
