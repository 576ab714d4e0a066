// Package reports manages crowd-sourced capacity reports.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/notify"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

var (
	ErrUnknownFacility = errors.New("facility does not exist")
	ErrBadSource       = errors.New("unknown report source")
)

// SortableFields is the closed allow-list of report sort fields.
var SortableFields = map[string]string{
	"id":          "id",
	"report_date": "report_date",
	"created_at":  "created_at",
}

// Service handles capacity report CRUD and mutation fanout.
type Service struct {
	repo       *storage.Repository[model.Report, model.ReportPatch]
	facilities storage.FacilityStore
	notifier   *notify.Notifier
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewService(store storage.ReportStore, facilities storage.FacilityStore, notifier *notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:       storage.NewRepository[model.Report, model.ReportPatch](store, "report_date", SortableFields),
		facilities: facilities,
		notifier:   notifier,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "reports").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Report, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, opts storage.ListOptions) ([]model.Report, error) {
	return s.repo.List(ctx, opts)
}

// CreateParams carries the creation payload.
type CreateParams struct {
	FacilityID   uuid.UUID `validate:"required"`
	ICUVacant    int       `validate:"min=0"`
	ICUOccupied  int       `validate:"min=0"`
	IsolVacant   int       `validate:"min=0"`
	IsolOccupied int       `validate:"min=0"`
	WardVacant   int       `validate:"min=0"`
	WardOccupied int       `validate:"min=0"`
	ReportDate   time.Time
	Source       model.ReportSource `validate:"required"`
}

// Create persists a report against an existing facility and publishes
// create:report.
func (s *Service) Create(ctx context.Context, params CreateParams, actor *uuid.UUID) (model.Report, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.Report{}, err
	}
	if !params.Source.Valid() {
		return model.Report{}, fmt.Errorf("%w: %q", ErrBadSource, params.Source)
	}

	if _, err := s.facilities.Get(ctx, params.FacilityID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Report{}, ErrUnknownFacility
		}
		return model.Report{}, fmt.Errorf("check facility: %w", err)
	}

	reportDate := params.ReportDate
	if reportDate.IsZero() {
		reportDate = time.Now().UTC()
	}

	report := model.Report{
		FacilityID:   params.FacilityID,
		ICUVacant:    params.ICUVacant,
		ICUOccupied:  params.ICUOccupied,
		IsolVacant:   params.IsolVacant,
		IsolOccupied: params.IsolOccupied,
		WardVacant:   params.WardVacant,
		WardOccupied: params.WardOccupied,
		ReportDate:   reportDate,
		Source:       params.Source,
	}
	report.CreatedByID = actor
	report.ModifiedByID = actor

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		return model.Report{}, fmt.Errorf("create report: %w", err)
	}

	s.notifier.Publish("create:report", created)
	return created, nil
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	ICUVacant    *int `validate:"omitempty,min=0"`
	ICUOccupied  *int `validate:"omitempty,min=0"`
	IsolVacant   *int `validate:"omitempty,min=0"`
	IsolOccupied *int `validate:"omitempty,min=0"`
	WardVacant   *int `validate:"omitempty,min=0"`
	WardOccupied *int `validate:"omitempty,min=0"`
	ReportDate   *time.Time
	Source       *model.ReportSource
}

// Update merges the supplied fields and publishes update:report.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actor *uuid.UUID) (model.Report, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.Report{}, err
	}
	if params.Source != nil && !params.Source.Valid() {
		return model.Report{}, fmt.Errorf("%w: %q", ErrBadSource, *params.Source)
	}

	patch := model.ReportPatch{
		ICUVacant:    params.ICUVacant,
		ICUOccupied:  params.ICUOccupied,
		IsolVacant:   params.IsolVacant,
		IsolOccupied: params.IsolOccupied,
		WardVacant:   params.WardVacant,
		WardOccupied: params.WardOccupied,
		ReportDate:   params.ReportDate,
		Source:       params.Source,
		ModifiedByID: actor,
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return model.Report{}, err
	}

	s.notifier.Publish("update:report", updated)
	return updated, nil
}

// Delete removes the report and publishes delete:report.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (model.Report, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return model.Report{}, err
	}

	s.notifier.Publish("delete:report", deleted)
	return deleted, nil
}
