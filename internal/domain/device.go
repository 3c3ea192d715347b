package domain

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"
)

//go:generate mockgen -destination mocks/mock_device_repository.go -package mocks github.com/skyyield/skyyield/internal/domain DeviceRepository

// DeviceOwnership records who owns the hardware
type DeviceOwnership string

const (
	DeviceOwnedBySkyYield DeviceOwnership = "skyyield"
	DeviceOwnedByPartner  DeviceOwnership = "partner"
)

// DeviceStatus is the lifecycle status of a device
type DeviceStatus string

const (
	DeviceStatusProvisioning DeviceStatus = "provisioning"
	DeviceStatusActive       DeviceStatus = "active"
	DeviceStatusInactive     DeviceStatus = "inactive"
	DeviceStatusRetired      DeviceStatus = "retired"
)

// ValidDeviceStatus reports whether s is a known device status
func ValidDeviceStatus(s DeviceStatus) bool {
	switch s {
	case DeviceStatusProvisioning, DeviceStatusActive, DeviceStatusInactive, DeviceStatusRetired:
		return true
	}
	return false
}

var macAddressRe = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Device is a deployed hardware unit, optionally installed at a venue
type Device struct {
	ID                string          `json:"id"`
	VenueID           *string         `json:"venue_id,omitempty"`
	Serial            string          `json:"serial"`
	MACAddress        string          `json:"mac_address,omitempty"`
	Ownership         DeviceOwnership `json:"ownership"`
	Status            DeviceStatus    `json:"status"`
	PurchaseRequestID *string         `json:"purchase_request_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ErrDeviceNotFound is returned when a device is not found
type ErrDeviceNotFound struct {
	ID string
}

func (e *ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("device %s not found", e.ID)
}

// CreateDeviceRequest defines the parameters for direct admin device entry
type CreateDeviceRequest struct {
	VenueID    *string         `json:"venue_id,omitempty"`
	Serial     string          `json:"serial"`
	MACAddress string          `json:"mac_address,omitempty"`
	Ownership  DeviceOwnership `json:"ownership"`
}

func (r *CreateDeviceRequest) Validate() error {
	if r.Serial == "" {
		return fmt.Errorf("serial is required")
	}
	if r.MACAddress != "" && !macAddressRe.MatchString(r.MACAddress) {
		return fmt.Errorf("invalid mac_address format")
	}
	if r.Ownership == "" {
		r.Ownership = DeviceOwnedBySkyYield
	}
	if r.Ownership != DeviceOwnedBySkyYield && r.Ownership != DeviceOwnedByPartner {
		return fmt.Errorf("invalid ownership: %s", r.Ownership)
	}
	return nil
}

// UpdateDeviceRequest defines the mutable device fields
type UpdateDeviceRequest struct {
	ID         string        `json:"id"`
	VenueID    *string       `json:"venue_id,omitempty"`
	MACAddress *string       `json:"mac_address,omitempty"`
	Status     *DeviceStatus `json:"status,omitempty"`
}

func (r *UpdateDeviceRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.MACAddress != nil && *r.MACAddress != "" && !macAddressRe.MatchString(*r.MACAddress) {
		return fmt.Errorf("invalid mac_address format")
	}
	if r.Status != nil && !ValidDeviceStatus(*r.Status) {
		return fmt.Errorf("invalid device status: %s", *r.Status)
	}
	return nil
}

// DeviceRepository is the interface for device persistence
type DeviceRepository interface {
	Create(ctx context.Context, device *Device) error
	// CreateTx is used by purchase-request assignment so devices and the
	// request status change commit atomically
	CreateTx(ctx context.Context, tx *sql.Tx, device *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	GetBySerial(ctx context.Context, serial string) (*Device, error)
	Update(ctx context.Context, device *Device) error
	ListByVenue(ctx context.Context, venueID string) ([]*Device, error)
	List(ctx context.Context, status DeviceStatus, limit, offset int) ([]*Device, error)
	// CountActiveByPartner counts active devices across the partner's venues,
	// used by the monthly commission job
	CountActiveByPartner(ctx context.Context, partnerID string) (int, error)
}
