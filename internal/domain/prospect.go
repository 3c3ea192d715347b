package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_prospect_repository.go -package mocks github.com/skyyield/skyyield/internal/domain ProspectRepository

// ProspectStatus is the CRM status of a pre-partner lead
type ProspectStatus string

const (
	ProspectStatusNew       ProspectStatus = "new"
	ProspectStatusContacted ProspectStatus = "contacted"
	ProspectStatusQualified ProspectStatus = "qualified"
	ProspectStatusConverted ProspectStatus = "converted"
	ProspectStatusLost      ProspectStatus = "lost"
)

// ValidProspectStatus reports whether s is a known prospect status
func ValidProspectStatus(s ProspectStatus) bool {
	switch s {
	case ProspectStatusNew, ProspectStatusContacted, ProspectStatusQualified,
		ProspectStatusConverted, ProspectStatusLost:
		return true
	}
	return false
}

// Prospect is a CRM lead that may be converted into a partner
type Prospect struct {
	ID                 string         `json:"id"`
	ContactName        string         `json:"contact_name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone,omitempty"`
	CompanyName        string         `json:"company_name,omitempty"`
	Source             string         `json:"source,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	Status             ProspectStatus `json:"status"`
	ConvertedPartnerID *string        `json:"converted_partner_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// ErrProspectNotFound is returned when a prospect is not found
type ErrProspectNotFound struct {
	ID string
}

func (e *ErrProspectNotFound) Error() string {
	return fmt.Sprintf("prospect %s not found", e.ID)
}

// ErrProspectAlreadyConverted is returned when converting a converted prospect
type ErrProspectAlreadyConverted struct {
	ID string
}

func (e *ErrProspectAlreadyConverted) Error() string {
	return fmt.Sprintf("prospect %s has already been converted", e.ID)
}

// CreateProspectRequest defines the parameters for creating a prospect
type CreateProspectRequest struct {
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Source      string `json:"source,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (r *CreateProspectRequest) Validate() error {
	if r.ContactName == "" {
		return fmt.Errorf("contact_name is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ConvertProspectRequest converts a prospect into a partner of the given type
type ConvertProspectRequest struct {
	ID   string      `json:"id"`
	Type PartnerType `json:"type,omitempty"`
}

func (r *ConvertProspectRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Type == "" {
		r.Type = PartnerTypeLocation
	}
	if !ValidPartnerType(r.Type) {
		return fmt.Errorf("invalid partner type: %s", r.Type)
	}
	return nil
}

// ProspectRepository is the interface for prospect persistence
type ProspectRepository interface {
	Create(ctx context.Context, prospect *Prospect) error
	GetByID(ctx context.Context, id string) (*Prospect, error)
	Update(ctx context.Context, prospect *Prospect) error
	List(ctx context.Context, status ProspectStatus, limit, offset int) ([]*Prospect, error)
}
