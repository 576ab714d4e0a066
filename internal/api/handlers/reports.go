package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/domain/reports"
)

// ReportsHandler serves capacity reports. Reads are public; creating takes
// any active account, editing and deleting take a superuser.
type ReportsHandler struct {
	reports *reports.Service
	env     string
}

func NewReportsHandler(reportsSvc *reports.Service, env string) *ReportsHandler {
	return &ReportsHandler{reports: reportsSvc, env: env}
}

// List returns a page of reports ordered by report date.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	page, err := h.reports.List(r.Context(), opts)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	var last string
	if len(page) > 0 {
		last = reportFieldValue(page[len(page)-1], sortField(opts.AfterField, "report_date"))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data:       page,
		NextCursor: nextCursor(opts, "report_date", last, len(page)),
	})
}

// Get returns one report by id.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid report id", nil, h.env)
		return
	}

	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type createReportRequest struct {
	FacilityID   uuid.UUID          `json:"facility_id"`
	ICUVacant    int                `json:"icu_vacant"`
	ICUOccupied  int                `json:"icu_occupied"`
	IsolVacant   int                `json:"isol_vacant"`
	IsolOccupied int                `json:"isol_occupied"`
	WardVacant   int                `json:"ward_vacant"`
	WardOccupied int                `json:"ward_occupied"`
	ReportDate   time.Time          `json:"report_date"`
	Source       model.ReportSource `json:"source"`
}

// Create records a capacity report against an existing facility.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	report, err := h.reports.Create(r.Context(), reports.CreateParams{
		FacilityID:   req.FacilityID,
		ICUVacant:    req.ICUVacant,
		ICUOccupied:  req.ICUOccupied,
		IsolVacant:   req.IsolVacant,
		IsolOccupied: req.IsolOccupied,
		WardVacant:   req.WardVacant,
		WardOccupied: req.WardOccupied,
		ReportDate:   req.ReportDate,
		Source:       req.Source,
	}, actorID(r))
	if err != nil {
		if errors.Is(err, reports.ErrUnknownFacility) {
			problem.Write(w, r, http.StatusUnprocessableEntity, "unknown-facility", "Facility does not exist", nil, h.env)
			return
		}
		if errors.Is(err, reports.ErrBadSource) {
			problem.Write(w, r, http.StatusUnprocessableEntity, "bad-source", "Unknown report source", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

type updateReportRequest struct {
	ICUVacant    *int                `json:"icu_vacant"`
	ICUOccupied  *int                `json:"icu_occupied"`
	IsolVacant   *int                `json:"isol_vacant"`
	IsolOccupied *int                `json:"isol_occupied"`
	WardVacant   *int                `json:"ward_vacant"`
	WardOccupied *int                `json:"ward_occupied"`
	ReportDate   *time.Time          `json:"report_date"`
	Source       *model.ReportSource `json:"source"`
}

// Update merges the supplied fields into the stored report. Superuser only.
func (h *ReportsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid report id", nil, h.env)
		return
	}

	var req updateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	report, err := h.reports.Update(r.Context(), id, reports.UpdateParams{
		ICUVacant:    req.ICUVacant,
		ICUOccupied:  req.ICUOccupied,
		IsolVacant:   req.IsolVacant,
		IsolOccupied: req.IsolOccupied,
		WardVacant:   req.WardVacant,
		WardOccupied: req.WardOccupied,
		ReportDate:   req.ReportDate,
		Source:       req.Source,
	}, actorID(r))
	if err != nil {
		if errors.Is(err, reports.ErrBadSource) {
			problem.Write(w, r, http.StatusUnprocessableEntity, "bad-source", "Unknown report source", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Delete removes a report and returns the deleted record. Superuser only.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid report id", nil, h.env)
		return
	}

	report, err := h.reports.Delete(r.Context(), id)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func reportFieldValue(rep model.Report, field string) string {
	switch field {
	case "id":
		return rep.ID.String()
	case "created_at":
		return rep.CreatedAt.Format(time.RFC3339Nano)
	default:
		return rep.ReportDate.Format(time.RFC3339Nano)
	}
}
