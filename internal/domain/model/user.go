// Package model holds the entity types shared by storage, domain services,
// and the API layer. JSON tags describe the external (read) representation;
// secrets are never serialized.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can authenticate against the service.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	FullName       string    `json:"full_name,omitempty"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u User) EntityID() uuid.UUID { return u.ID }

// UserPatch is a partial update: only non-nil fields overwrite the stored
// user, everything else is left untouched.
type UserPatch struct {
	Email          *string
	PhoneNumber    *string
	FullName       *string
	HashedPassword *string
	IsActive       *bool
	IsVerified     *bool
	IsSuperuser    *bool
}

func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.HashedPassword != nil {
		u.HashedPassword = *p.HashedPassword
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.IsSuperuser != nil {
		u.IsSuperuser = *p.IsSuperuser
	}
}
