package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/skyyield/skyyield/internal/domain"
)

type partnerRepository struct {
	db *sql.DB
}

// NewPartnerRepository creates a new PostgreSQL repository for partners
func NewPartnerRepository(db *sql.DB) domain.PartnerRepository {
	return &partnerRepository{db: db}
}

const partnerColumns = `id, partner_code, type, contact_name, email, phone, company_name,
	stage, discovery_call_status, loi_status, contract_status, tipalti_status,
	tipalti_payee_id, discovery_call_at, loi_signed_at, contract_signed_at,
	activated_at, active, created_at, updated_at`

// scanPartner scans a database row into a domain.Partner
func scanPartner(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Partner, error) {
	var p domain.Partner
	var phone, payeeID sql.NullString
	var discoveryCallAt, loiSignedAt, contractSignedAt, activatedAt sql.NullTime

	err := scanner.Scan(
		&p.ID,
		&p.PartnerCode,
		&p.Type,
		&p.ContactName,
		&p.Email,
		&phone,
		&p.CompanyName,
		&p.Stage,
		&p.DiscoveryCallStatus,
		&p.LOIStatus,
		&p.ContractStatus,
		&p.TipaltiStatus,
		&payeeID,
		&discoveryCallAt,
		&loiSignedAt,
		&contractSignedAt,
		&activatedAt,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		p.Phone = phone.String
	}
	if payeeID.Valid {
		p.TipaltiPayeeID = &payeeID.String
	}
	if discoveryCallAt.Valid {
		p.DiscoveryCallAt = &discoveryCallAt.Time
	}
	if loiSignedAt.Valid {
		p.LOISignedAt = &loiSignedAt.Time
	}
	if contractSignedAt.Valid {
		p.ContractSignedAt = &contractSignedAt.Time
	}
	if activatedAt.Valid {
		p.ActivatedAt = &activatedAt.Time
	}

	return &p, nil
}

// WithTransaction executes a function within a transaction. Pipeline
// transitions rely on this together with the FOR UPDATE getters to serialize
// concurrent read-modify-write on the same partner row.
func (r *partnerRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Create persists a new partner
func (r *partnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		return r.CreateTx(ctx, tx, partner)
	})
}

// CreateTx persists a new partner within a transaction
func (r *partnerRepository) CreateTx(ctx context.Context, tx *sql.Tx, partner *domain.Partner) error {
	now := time.Now().UTC()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	query := `
		INSERT INTO partners (
			id, partner_code, type, contact_name, email, phone, company_name,
			stage, discovery_call_status, loi_status, contract_status,
			tipalti_status, tipalti_payee_id, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := tx.ExecContext(ctx, query,
		partner.ID,
		partner.PartnerCode,
		partner.Type,
		partner.ContactName,
		partner.Email,
		nullString(partner.Phone),
		partner.CompanyName,
		partner.Stage,
		partner.DiscoveryCallStatus,
		partner.LOIStatus,
		partner.ContractStatus,
		partner.TipaltiStatus,
		partner.TipaltiPayeeID,
		partner.Active,
		partner.CreatedAt,
		partner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

func (r *partnerRepository) getByField(ctx context.Context, field, value string) (*domain.Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM partners WHERE %s = $1`, partnerColumns, field)

	partner, err := scanPartner(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrPartnerNotFound{ID: value}
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return partner, nil
}

// GetByID retrieves a partner by ID
func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	return r.getByField(ctx, "id", id)
}

// GetByPartnerCode retrieves a partner by its human-readable code
func (r *partnerRepository) GetByPartnerCode(ctx context.Context, code string) (*domain.Partner, error) {
	return r.getByField(ctx, "partner_code", code)
}

// GetByEmail retrieves a partner by email
func (r *partnerRepository) GetByEmail(ctx context.Context, email string) (*domain.Partner, error) {
	return r.getByField(ctx, "email", email)
}

func (r *partnerRepository) getByFieldTx(ctx context.Context, tx *sql.Tx, field, value string) (*domain.Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM partners WHERE %s = $1 FOR UPDATE`, partnerColumns, field)

	partner, err := scanPartner(tx.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrPartnerNotFound{ID: value}
		}
		return nil, fmt.Errorf("failed to get partner for update: %w", err)
	}

	return partner, nil
}

// GetByIDTx retrieves a partner by ID and locks the row
func (r *partnerRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Partner, error) {
	return r.getByFieldTx(ctx, tx, "id", id)
}

// GetByEmailTx retrieves a partner by email and locks the row
func (r *partnerRepository) GetByEmailTx(ctx context.Context, tx *sql.Tx, email string) (*domain.Partner, error) {
	return r.getByFieldTx(ctx, tx, "email", email)
}

// Update persists all mutable partner fields
func (r *partnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		return r.UpdateTx(ctx, tx, partner)
	})
}

// UpdateTx persists all mutable partner fields within a transaction
func (r *partnerRepository) UpdateTx(ctx context.Context, tx *sql.Tx, partner *domain.Partner) error {
	partner.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE partners SET
			contact_name = $2, phone = $3, company_name = $4, stage = $5,
			discovery_call_status = $6, loi_status = $7, contract_status = $8,
			tipalti_status = $9, tipalti_payee_id = $10, discovery_call_at = $11,
			loi_signed_at = $12, contract_signed_at = $13, activated_at = $14,
			active = $15, updated_at = $16
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query,
		partner.ID,
		partner.ContactName,
		nullString(partner.Phone),
		partner.CompanyName,
		partner.Stage,
		partner.DiscoveryCallStatus,
		partner.LOIStatus,
		partner.ContractStatus,
		partner.TipaltiStatus,
		partner.TipaltiPayeeID,
		partner.DiscoveryCallAt,
		partner.LOISignedAt,
		partner.ContractSignedAt,
		partner.ActivatedAt,
		partner.Active,
		partner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrPartnerNotFound{ID: partner.ID}
	}

	return nil
}

// Deactivate soft-deactivates a partner; rows are never hard-deleted
func (r *partnerRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE partners SET active = FALSE, stage = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, domain.StageInactive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate partner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrPartnerNotFound{ID: id}
	}

	return nil
}

// List retrieves partners matching the filter params
func (r *partnerRepository) List(ctx context.Context, params domain.PartnerListParams) (*domain.PartnerListResult, error) {
	builder := sq.Select(partnerColumns).
		From("partners").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	countBuilder := sq.Select("COUNT(*)").From("partners").PlaceholderFormat(sq.Dollar)

	if params.Stage != "" {
		builder = builder.Where(sq.Eq{"stage": params.Stage})
		countBuilder = countBuilder.Where(sq.Eq{"stage": params.Stage})
	}
	if params.Type != "" {
		builder = builder.Where(sq.Eq{"type": params.Type})
		countBuilder = countBuilder.Where(sq.Eq{"type": params.Type})
	}
	if params.Email != "" {
		builder = builder.Where(sq.Eq{"email": params.Email})
		countBuilder = countBuilder.Where(sq.Eq{"email": params.Email})
	}
	if params.Active != nil {
		builder = builder.Where(sq.Eq{"active": *params.Active})
		countBuilder = countBuilder.Where(sq.Eq{"active": *params.Active})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*domain.Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		partners = append(partners, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through partners: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count partners: %w", err)
	}

	return &domain.PartnerListResult{Partners: partners, Total: total}, nil
}

// ListPayees retrieves active partners with a payout payee configured
func (r *partnerRepository) ListPayees(ctx context.Context) ([]*domain.Partner, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM partners
		WHERE active = TRUE AND tipalti_payee_id IS NOT NULL
		ORDER BY created_at
	`, partnerColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}
	defer rows.Close()

	var partners []*domain.Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		partners = append(partners, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through payees: %w", err)
	}

	return partners, nil
}

// NextSequenceTx reserves the next partner code sequence for (prefix, year)
func (r *partnerRepository) NextSequenceTx(ctx context.Context, tx *sql.Tx, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO partner_sequences (prefix, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_value = partner_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int64
	if err := tx.QueryRowContext(ctx, query, prefix, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to reserve partner sequence: %w", err)
	}

	return seq, nil
}

// nullString converts empty strings to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
