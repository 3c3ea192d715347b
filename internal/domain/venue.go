package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_venue_repository.go -package mocks github.com/skyyield/skyyield/internal/domain VenueRepository

// VenueStatus is the operational status of a venue
type VenueStatus string

const (
	VenueStatusPending  VenueStatus = "pending"
	VenueStatusTrial    VenueStatus = "trial"
	VenueStatusActive   VenueStatus = "active"
	VenueStatusInactive VenueStatus = "inactive"
)

// ValidVenueStatus reports whether s is a known venue status
func ValidVenueStatus(s VenueStatus) bool {
	switch s {
	case VenueStatusPending, VenueStatusTrial, VenueStatusActive, VenueStatusInactive:
		return true
	}
	return false
}

// Venue is a physical location operated by a location partner
type Venue struct {
	ID           string      `json:"id"`
	PartnerID    string      `json:"partner_id"`
	Name         string      `json:"name"`
	AddressLine1 string      `json:"address_line_1"`
	AddressLine2 string      `json:"address_line_2,omitempty"`
	City         string      `json:"city"`
	Region       string      `json:"region,omitempty"`
	Postcode     string      `json:"postcode,omitempty"`
	Country      string      `json:"country"`
	Status       VenueStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ErrVenueNotFound is returned when a venue is not found
type ErrVenueNotFound struct {
	ID string
}

func (e *ErrVenueNotFound) Error() string {
	return fmt.Sprintf("venue %s not found", e.ID)
}

// CreateVenueRequest defines the parameters for creating a venue
type CreateVenueRequest struct {
	PartnerID    string `json:"partner_id"`
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country"`
}

func (r *CreateVenueRequest) Validate() error {
	if r.PartnerID == "" {
		return fmt.Errorf("partner_id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.AddressLine1 == "" {
		return fmt.Errorf("address_line_1 is required")
	}
	if r.City == "" {
		return fmt.Errorf("city is required")
	}
	if r.Country == "" {
		return fmt.Errorf("country is required")
	}
	return nil
}

// UpdateVenueRequest defines the mutable venue fields
type UpdateVenueRequest struct {
	ID           string       `json:"id"`
	Name         *string      `json:"name,omitempty"`
	AddressLine1 *string      `json:"address_line_1,omitempty"`
	AddressLine2 *string      `json:"address_line_2,omitempty"`
	City         *string      `json:"city,omitempty"`
	Region       *string      `json:"region,omitempty"`
	Postcode     *string      `json:"postcode,omitempty"`
	Country      *string      `json:"country,omitempty"`
	Status       *VenueStatus `json:"status,omitempty"`
}

func (r *UpdateVenueRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Status != nil && !ValidVenueStatus(*r.Status) {
		return fmt.Errorf("invalid venue status: %s", *r.Status)
	}
	return nil
}

// VenueRepository is the interface for venue persistence
type VenueRepository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	Update(ctx context.Context, venue *Venue) error
	ListByPartner(ctx context.Context, partnerID string) ([]*Venue, error)
	List(ctx context.Context, status VenueStatus, limit, offset int) ([]*Venue, error)
	// CountActiveByPartner returns the number of active or trial venues,
	// used by the monthly commission job
	CountActiveByPartner(ctx context.Context, partnerID string) (int, error)
}
