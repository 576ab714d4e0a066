package model

import "github.com/google/uuid"

// Facility is a reporting site (hospital, shelter, depot) tracked by the
// beacon. Code is the natural sort key used for keyset listing.
type Facility struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
	Lat     *float64  `json:"lat,omitempty"`
	Lng     *float64  `json:"lng,omitempty"`
	MapURL  string    `json:"map_url,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Website string    `json:"website,omitempty"`
	Audit
}

func (f Facility) EntityID() uuid.UUID { return f.ID }

// FacilityPatch applies partial-merge update semantics to a Facility.
// ModifiedByID is stamped by the service layer, never by caller payloads.
type FacilityPatch struct {
	Code         *string
	Name         *string
	Address      *string
	Lat          *float64
	Lng          *float64
	MapURL       *string
	Phone        *string
	Website      *string
	ModifiedByID *uuid.UUID
}

func (p FacilityPatch) Apply(f *Facility) {
	if p.Code != nil {
		f.Code = *p.Code
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	if p.Lat != nil {
		f.Lat = p.Lat
	}
	if p.Lng != nil {
		f.Lng = p.Lng
	}
	if p.MapURL != nil {
		f.MapURL = *p.MapURL
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Website != nil {
		f.Website = *p.Website
	}
	if p.ModifiedByID != nil {
		f.ModifiedByID = p.ModifiedByID
	}
}
