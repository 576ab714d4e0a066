package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportSource identifies where a capacity report came from.
type ReportSource string

const (
	SourceCrowd     ReportSource = "crowd"
	SourceVolunteer ReportSource = "volunteer"
	SourceFacility  ReportSource = "facility"
	SourceAgency    ReportSource = "agency"
)

// Valid reports whether s is one of the known report sources.
func (s ReportSource) Valid() bool {
	switch s {
	case SourceCrowd, SourceVolunteer, SourceFacility, SourceAgency:
		return true
	}
	return false
}

// Report is a point-in-time capacity observation for one facility.
type Report struct {
	ID           uuid.UUID    `json:"id"`
	FacilityID   uuid.UUID    `json:"facility_id"`
	ICUVacant    int          `json:"icu_vacant"`
	ICUOccupied  int          `json:"icu_occupied"`
	IsolVacant   int          `json:"isol_vacant"`
	IsolOccupied int          `json:"isol_occupied"`
	WardVacant   int          `json:"ward_vacant"`
	WardOccupied int          `json:"ward_occupied"`
	ReportDate   time.Time    `json:"report_date"`
	Source       ReportSource `json:"source"`
	Audit
}

func (r Report) EntityID() uuid.UUID { return r.ID }

// ReportPatch applies partial-merge update semantics to a Report.
// ModifiedByID is stamped by the service layer, never by caller payloads.
type ReportPatch struct {
	ICUVacant    *int
	ICUOccupied  *int
	IsolVacant   *int
	IsolOccupied *int
	WardVacant   *int
	WardOccupied *int
	ReportDate   *time.Time
	Source       *ReportSource
	ModifiedByID *uuid.UUID
}

func (p ReportPatch) Apply(r *Report) {
	if p.ICUVacant != nil {
		r.ICUVacant = *p.ICUVacant
	}
	if p.ICUOccupied != nil {
		r.ICUOccupied = *p.ICUOccupied
	}
	if p.IsolVacant != nil {
		r.IsolVacant = *p.IsolVacant
	}
	if p.IsolOccupied != nil {
		r.IsolOccupied = *p.IsolOccupied
	}
	if p.WardVacant != nil {
		r.WardVacant = *p.WardVacant
	}
	if p.WardOccupied != nil {
		r.WardOccupied = *p.WardOccupied
	}
	if p.ReportDate != nil {
		r.ReportDate = *p.ReportDate
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.ModifiedByID != nil {
		r.ModifiedByID = p.ModifiedByID
	}
}
