package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit records who created and last modified a row. Embedded by value in
// entities that track provenance.
type Audit struct {
	CreatedByID  *uuid.UUID `json:"created_by_id,omitempty"`
	ModifiedByID *uuid.UUID `json:"modified_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Touch stamps the modifier and update time.
func (a *Audit) Touch(actor *uuid.UUID, now time.Time) {
	a.ModifiedByID = actor
	a.UpdatedAt = now
}

// Stamp initializes audit fields for a freshly created row.
func (a *Audit) Stamp(actor *uuid.UUID, now time.Time) {
	a.CreatedByID = actor
	a.ModifiedByID = actor
	a.CreatedAt = now
	a.UpdatedAt = now
}
