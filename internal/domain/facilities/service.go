// Package facilities manages the facility registry and publishes mutation
// events to connected observers.
package facilities

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/notify"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

var ErrCodeTaken = errors.New("facility code already exists")

// SortableFields is the closed allow-list of facility sort fields. Code is
// the natural key.
var SortableFields = map[string]string{
	"id":   "id",
	"code": "code",
	"name": "name",
}

// Service handles facility CRUD and mutation fanout.
type Service struct {
	repo     *storage.Repository[model.Facility, model.FacilityPatch]
	store    storage.FacilityStore
	notifier *notify.Notifier
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(store storage.FacilityStore, notifier *notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     storage.NewRepository[model.Facility, model.FacilityPatch](store, "code", SortableFields),
		store:    store,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger.With().Str("component", "facilities").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Facility, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (model.Facility, error) {
	return s.store.GetByCode(ctx, code)
}

func (s *Service) GetByName(ctx context.Context, name string) (model.Facility, error) {
	return s.store.GetByName(ctx, name)
}

func (s *Service) List(ctx context.Context, opts storage.ListOptions) ([]model.Facility, error) {
	return s.repo.List(ctx, opts)
}

// CreateParams carries the creation payload.
type CreateParams struct {
	Code    string   `validate:"required,max=64"`
	Name    string   `validate:"required,max=200"`
	Address string   `validate:"omitempty,max=500"`
	Lat     *float64 `validate:"omitempty,latitude"`
	Lng     *float64 `validate:"omitempty,longitude"`
	MapURL  string   `validate:"omitempty,url"`
	Phone   string   `validate:"omitempty,max=32"`
	Website string   `validate:"omitempty,url"`
}

// Create persists a new facility and publishes create:facility.
func (s *Service) Create(ctx context.Context, params CreateParams, actor *uuid.UUID) (model.Facility, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.Facility{}, err
	}

	if _, err := s.store.GetByCode(ctx, params.Code); err == nil {
		return model.Facility{}, ErrCodeTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return model.Facility{}, fmt.Errorf("check code: %w", err)
	}

	facility := model.Facility{
		Code:    params.Code,
		Name:    params.Name,
		Address: params.Address,
		Lat:     params.Lat,
		Lng:     params.Lng,
		MapURL:  params.MapURL,
		Phone:   params.Phone,
		Website: params.Website,
	}
	facility.CreatedByID = actor
	facility.ModifiedByID = actor

	created, err := s.repo.Create(ctx, facility)
	if err != nil {
		return model.Facility{}, fmt.Errorf("create facility: %w", err)
	}

	s.notifier.Publish("create:facility", created)
	s.logger.Info().Str("facility_id", created.ID.String()).Str("code", created.Code).Msg("facility created")
	return created, nil
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Code    *string  `validate:"omitempty,max=64"`
	Name    *string  `validate:"omitempty,max=200"`
	Address *string  `validate:"omitempty,max=500"`
	Lat     *float64 `validate:"omitempty,latitude"`
	Lng     *float64 `validate:"omitempty,longitude"`
	MapURL  *string  `validate:"omitempty,url"`
	Phone   *string  `validate:"omitempty,max=32"`
	Website *string  `validate:"omitempty,url"`
}

// Update merges the supplied fields into the stored facility and publishes
// update:facility with the merged result.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actor *uuid.UUID) (model.Facility, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.Facility{}, err
	}

	patch := model.FacilityPatch{
		Code:         params.Code,
		Name:         params.Name,
		Address:      params.Address,
		Lat:          params.Lat,
		Lng:          params.Lng,
		MapURL:       params.MapURL,
		Phone:        params.Phone,
		Website:      params.Website,
		ModifiedByID: actor,
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return model.Facility{}, err
	}

	s.notifier.Publish("update:facility", updated)
	return updated, nil
}

// Delete removes the facility, returns it for confirmation, and publishes
// delete:facility.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (model.Facility, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return model.Facility{}, err
	}

	s.notifier.Publish("delete:facility", deleted)
	s.logger.Info().Str("facility_id", deleted.ID.String()).Str("code", deleted.Code).Msg("facility deleted")
	return deleted, nil
}
