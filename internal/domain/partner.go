package domain

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_partner_repository.go -package mocks github.com/skyyield/skyyield/internal/domain PartnerRepository
//go:generate mockgen -destination mocks/mock_partner_service.go -package mocks github.com/skyyield/skyyield/internal/domain PartnerServiceInterface

// PartnerType identifies the commercial relationship a partner has with SkyYield
type PartnerType string

const (
	PartnerTypeLocation     PartnerType = "location_partner"
	PartnerTypeReferral     PartnerType = "referral_partner"
	PartnerTypeChannel      PartnerType = "channel_partner"
	PartnerTypeRelationship PartnerType = "relationship_partner"
	PartnerTypeContractor   PartnerType = "contractor"
	PartnerTypeEmployee     PartnerType = "employee"
)

// partnerCodePrefixes maps a partner type to the prefix of its human-readable code
var partnerCodePrefixes = map[PartnerType]string{
	PartnerTypeLocation:     "LP",
	PartnerTypeReferral:     "RP",
	PartnerTypeChannel:      "CH",
	PartnerTypeRelationship: "RL",
	PartnerTypeContractor:   "CT",
	PartnerTypeEmployee:     "EM",
}

// ValidPartnerType reports whether t is a known partner type
func ValidPartnerType(t PartnerType) bool {
	_, ok := partnerCodePrefixes[t]
	return ok
}

// CodePrefix returns the partner code prefix for the type, e.g. "LP" for
// location partners
func (t PartnerType) CodePrefix() string {
	return partnerCodePrefixes[t]
}

// FormatPartnerCode builds the human-readable partner code, e.g. LP-2026-0042
func FormatPartnerCode(t PartnerType, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%04d", t.CodePrefix(), year, sequence)
}

// PipelineStage is the onboarding stage of a partner
type PipelineStage string

const (
	StageApplication        PipelineStage = "application"
	StageInitialReview      PipelineStage = "initial_review"
	StageDiscoveryScheduled PipelineStage = "discovery_scheduled"
	StageDiscoveryCompleted PipelineStage = "discovery_completed"
	StageLOISent            PipelineStage = "loi_sent"
	StageLOISigned          PipelineStage = "loi_signed"
	StageTrial              PipelineStage = "trial"
	StageContractSent       PipelineStage = "contract_sent"
	StageContractSigned     PipelineStage = "contract_signed"
	StageInstallScheduled   PipelineStage = "install_scheduled"
	StageActive             PipelineStage = "active"
	StageRejected           PipelineStage = "rejected"
	StageInactive           PipelineStage = "inactive"
)

var pipelineStages = []PipelineStage{
	StageApplication, StageInitialReview, StageDiscoveryScheduled,
	StageDiscoveryCompleted, StageLOISent, StageLOISigned, StageTrial,
	StageContractSent, StageContractSigned, StageInstallScheduled,
	StageActive, StageRejected, StageInactive,
}

// ValidPipelineStage reports whether s is a known stage
func ValidPipelineStage(s PipelineStage) bool {
	for _, stage := range pipelineStages {
		if stage == s {
			return true
		}
	}
	return false
}

// DocumentStatus tracks a signature document (LOI or contract)
type DocumentStatus string

const (
	DocumentStatusNone     DocumentStatus = "none"
	DocumentStatusSent     DocumentStatus = "sent"
	DocumentStatusViewed   DocumentStatus = "viewed"
	DocumentStatusSigned   DocumentStatus = "signed"
	DocumentStatusDeclined DocumentStatus = "declined"
)

// CallStatus tracks the discovery call
type CallStatus string

const (
	CallStatusNone      CallStatus = "none"
	CallStatusScheduled CallStatus = "scheduled"
	CallStatusCompleted CallStatus = "completed"
	CallStatusCanceled  CallStatus = "canceled"
)

// PayeeStatus tracks payout onboarding with the payment provider
type PayeeStatus string

const (
	PayeeStatusNone      PayeeStatus = "none"
	PayeeStatusInvited   PayeeStatus = "invited"
	PayeeStatusCompleted PayeeStatus = "completed"
)

// Partner is a counterparty with a portal account and a pipeline stage.
// Partners are never hard-deleted, only deactivated.
type Partner struct {
	ID                  string         `json:"id"`
	PartnerCode         string         `json:"partner_id"`
	Type                PartnerType    `json:"type"`
	ContactName         string         `json:"contact_name"`
	Email               string         `json:"email"`
	Phone               string         `json:"phone,omitempty"`
	CompanyName         string         `json:"company_name"`
	Stage               PipelineStage  `json:"stage"`
	DiscoveryCallStatus CallStatus     `json:"discovery_call_status"`
	LOIStatus           DocumentStatus `json:"loi_status"`
	ContractStatus      DocumentStatus `json:"contract_status"`
	TipaltiStatus       PayeeStatus    `json:"tipalti_status"`
	TipaltiPayeeID      *string        `json:"tipalti_payee_id,omitempty"`
	DiscoveryCallAt     *time.Time     `json:"discovery_call_at,omitempty"`
	LOISignedAt         *time.Time     `json:"loi_signed_at,omitempty"`
	ContractSignedAt    *time.Time     `json:"contract_signed_at,omitempty"`
	ActivatedAt         *time.Time     `json:"activated_at,omitempty"`
	Active              bool           `json:"active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ErrPartnerNotFound is returned when a partner is not found
type ErrPartnerNotFound struct {
	ID string
}

func (e *ErrPartnerNotFound) Error() string {
	return fmt.Sprintf("partner %s not found", e.ID)
}

// CreatePartnerRequest defines the parameters for creating a partner
type CreatePartnerRequest struct {
	ContactName string      `json:"contact_name"`
	Email       string      `json:"email"`
	CompanyName string      `json:"company_name"`
	Phone       string      `json:"phone,omitempty"`
	Type        PartnerType `json:"type,omitempty"`
}

func (r *CreatePartnerRequest) Validate() error {
	if r.ContactName == "" {
		return fmt.Errorf("contact_name is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.CompanyName == "" {
		return fmt.Errorf("company_name is required")
	}
	if r.Type == "" {
		r.Type = PartnerTypeLocation
	}
	if !ValidPartnerType(r.Type) {
		return fmt.Errorf("invalid partner type: %s", r.Type)
	}
	return nil
}

// UpdatePartnerRequest defines the mutable partner fields
type UpdatePartnerRequest struct {
	ID             string  `json:"id"`
	ContactName    *string `json:"contact_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	CompanyName    *string `json:"company_name,omitempty"`
	TipaltiPayeeID *string `json:"tipalti_payee_id,omitempty"`
}

func (r *UpdatePartnerRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.ContactName != nil && *r.ContactName == "" {
		return fmt.Errorf("contact_name cannot be empty")
	}
	if r.CompanyName != nil && *r.CompanyName == "" {
		return fmt.Errorf("company_name cannot be empty")
	}
	return nil
}

// TransitionPartnerRequest moves a partner to a new stage manually (admin only)
type TransitionPartnerRequest struct {
	ID     string        `json:"id"`
	Stage  PipelineStage `json:"stage"`
	Reason string        `json:"reason,omitempty"`
}

func (r *TransitionPartnerRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !ValidPipelineStage(r.Stage) {
		return fmt.Errorf("invalid stage: %s", r.Stage)
	}
	return nil
}

// PartnerListParams filters partner lists
type PartnerListParams struct {
	Stage  PipelineStage `json:"stage,omitempty"`
	Type   PartnerType   `json:"type,omitempty"`
	Email  string        `json:"email,omitempty"`
	Active *bool         `json:"active,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

// FromQuery creates PartnerListParams from HTTP query parameters
func (p *PartnerListParams) FromQuery(query url.Values) error {
	p.Stage = PipelineStage(query.Get("stage"))
	p.Type = PartnerType(query.Get("type"))
	p.Email = query.Get("email")

	if activeStr := query.Get("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return fmt.Errorf("invalid active value: %s", activeStr)
		}
		p.Active = &active
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("invalid limit value: %s", limitStr)
		}
		p.Limit = limit
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return fmt.Errorf("invalid offset value: %s", offsetStr)
		}
		p.Offset = offset
	}

	return p.Validate()
}

func (p *PartnerListParams) Validate() error {
	if p.Stage != "" && !ValidPipelineStage(p.Stage) {
		return fmt.Errorf("invalid stage: %s", p.Stage)
	}
	if p.Type != "" && !ValidPartnerType(p.Type) {
		return fmt.Errorf("invalid partner type: %s", p.Type)
	}
	if p.Email != "" && !govalidator.IsEmail(p.Email) {
		return fmt.Errorf("invalid email format")
	}
	if p.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	return nil
}

// PartnerListResult contains a page of partners
type PartnerListResult struct {
	Partners []*Partner `json:"partners"`
	Total    int        `json:"total"`
}

// PartnerRepository is the interface for partner persistence
type PartnerRepository interface {
	// WithTransaction executes fn inside a transaction. Pipeline transitions
	// lock the partner row with GetByIDTx/GetByEmailTx before mutating it.
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error

	Create(ctx context.Context, partner *Partner) error
	CreateTx(ctx context.Context, tx *sql.Tx, partner *Partner) error

	GetByID(ctx context.Context, id string) (*Partner, error)
	// GetByIDTx locks the partner row FOR UPDATE
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*Partner, error)
	GetByPartnerCode(ctx context.Context, code string) (*Partner, error)
	GetByEmail(ctx context.Context, email string) (*Partner, error)
	// GetByEmailTx locks the partner row FOR UPDATE
	GetByEmailTx(ctx context.Context, tx *sql.Tx, email string) (*Partner, error)

	Update(ctx context.Context, partner *Partner) error
	UpdateTx(ctx context.Context, tx *sql.Tx, partner *Partner) error
	Deactivate(ctx context.Context, id string) error

	List(ctx context.Context, params PartnerListParams) (*PartnerListResult, error)

	// ListPayees returns active partners with a payout payee configured
	ListPayees(ctx context.Context) ([]*Partner, error)

	// NextSequenceTx reserves the next partner code sequence number for the
	// given prefix and year
	NextSequenceTx(ctx context.Context, tx *sql.Tx, prefix string, year int) (int64, error)
}

// PartnerServiceInterface defines the partner service operations
type PartnerServiceInterface interface {
	CreatePartner(ctx context.Context, req *CreatePartnerRequest) (*Partner, error)
	GetPartner(ctx context.Context, id string) (*Partner, error)
	UpdatePartner(ctx context.Context, req *UpdatePartnerRequest) (*Partner, error)
	DeactivatePartner(ctx context.Context, id string) error
	ListPartners(ctx context.Context, params PartnerListParams) (*PartnerListResult, error)
	TransitionPartner(ctx context.Context, actor string, req *TransitionPartnerRequest) (*Partner, error)
}
