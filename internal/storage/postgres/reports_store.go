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

const reportColumns = `id, facility_id, icu_vacant, icu_occupied, isol_vacant,
	isol_occupied, ward_vacant, ward_occupied, report_date, source,
	created_by_id, modified_by_id, created_at, updated_at`

// ReportStore implements storage.ReportStore on Postgres.
type ReportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

func scanReport(row pgx.Row) (model.Report, error) {
	var r model.Report
	err := row.Scan(
		&r.ID, &r.FacilityID, &r.ICUVacant, &r.ICUOccupied, &r.IsolVacant,
		&r.IsolOccupied, &r.WardVacant, &r.WardOccupied, &r.ReportDate,
		&r.Source, &r.CreatedByID, &r.ModifiedByID, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Report{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("scan report: %w", err)
	}
	return r, nil
}

func (s *ReportStore) Get(ctx context.Context, id uuid.UUID) (model.Report, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

func (s *ReportStore) Select(ctx context.Context, q storage.Query) ([]model.Report, error) {
	query, args, err := buildSelect(reportColumns, "reports", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.Report, 0, q.Limit)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *ReportStore) Insert(ctx context.Context, r model.Report) (model.Report, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	row := s.pool.QueryRow(ctx, `
INSERT INTO reports (id, facility_id, icu_vacant, icu_occupied, isol_vacant,
	isol_occupied, ward_vacant, ward_occupied, report_date, source,
	created_by_id, modified_by_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING `+reportColumns,
		r.ID, r.FacilityID, r.ICUVacant, r.ICUOccupied, r.IsolVacant,
		r.IsolOccupied, r.WardVacant, r.WardOccupied, r.ReportDate, r.Source,
		r.CreatedByID, r.ModifiedByID, r.CreatedAt, r.UpdatedAt,
	)
	return scanReport(row)
}

func (s *ReportStore) Save(ctx context.Context, r model.Report) (model.Report, error) {
	r.UpdatedAt = time.Now().UTC()

	row := s.pool.QueryRow(ctx, `
UPDATE reports SET icu_vacant = $2, icu_occupied = $3, isol_vacant = $4,
	isol_occupied = $5, ward_vacant = $6, ward_occupied = $7,
	report_date = $8, source = $9, modified_by_id = $10, updated_at = $11
WHERE id = $1
RETURNING `+reportColumns,
		r.ID, r.ICUVacant, r.ICUOccupied, r.IsolVacant, r.IsolOccupied,
		r.WardVacant, r.WardOccupied, r.ReportDate, r.Source,
		r.ModifiedByID, r.UpdatedAt,
	)
	return scanReport(row)
}

func (s *ReportStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
