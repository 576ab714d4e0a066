package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daxreyes/bushfire-beacon/internal/api/middleware"
	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/domain/facilities"
	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
)

// FacilitiesHandler serves the facility registry. Reads are public,
// mutations are superuser only and routed by facility code.
type FacilitiesHandler struct {
	facilities *facilities.Service
	env        string
}

func NewFacilitiesHandler(facilitiesSvc *facilities.Service, env string) *FacilitiesHandler {
	return &FacilitiesHandler{facilities: facilitiesSvc, env: env}
}

// List returns a page of facilities ordered by code.
func (h *FacilitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	page, err := h.facilities.List(r.Context(), opts)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	var last string
	if len(page) > 0 {
		last = facilityFieldValue(page[len(page)-1], sortField(opts.AfterField, "code"))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data:       page,
		NextCursor: nextCursor(opts, "code", last, len(page)),
	})
}

// Get returns one facility by its code.
func (h *FacilitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	facility, err := h.facilities.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

type facilityRequest struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	MapURL  string   `json:"map_url"`
	Phone   string   `json:"phone"`
	Website string   `json:"website"`
}

// Create adds a facility. Superuser only.
func (h *FacilitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	facility, err := h.facilities.Create(r.Context(), facilities.CreateParams{
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
		MapURL:  req.MapURL,
		Phone:   req.Phone,
		Website: req.Website,
	}, actorID(r))
	if err != nil {
		if errors.Is(err, facilities.ErrCodeTaken) {
			problem.Write(w, r, http.StatusConflict, "code-taken", "A facility with this code already exists", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusCreated, facility)
}

type updateFacilityRequest struct {
	Code    *string  `json:"code"`
	Name    *string  `json:"name"`
	Address *string  `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	MapURL  *string  `json:"map_url"`
	Phone   *string  `json:"phone"`
	Website *string  `json:"website"`
}

// Update merges the supplied fields into the facility addressed by code.
// Superuser only.
func (h *FacilitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.facilities.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	var req updateFacilityRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	facility, err := h.facilities.Update(r.Context(), existing.ID, facilities.UpdateParams{
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
		MapURL:  req.MapURL,
		Phone:   req.Phone,
		Website: req.Website,
	}, actorID(r))
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

// Delete removes the facility addressed by code and returns the deleted
// record. Superuser only.
func (h *FacilitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.facilities.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	facility, err := h.facilities.Delete(r.Context(), existing.ID)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

// actorID returns the authenticated principal's id for audit stamping, or
// nil on unauthenticated routes.
func actorID(r *http.Request) *uuid.UUID {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		return nil
	}
	id := principal.ID
	return &id
}

func facilityFieldValue(f model.Facility, field string) string {
	switch field {
	case "id":
		return f.ID.String()
	case "name":
		return f.Name
	default:
		return f.Code
	}
}
