package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type prospectRepository struct {
	db *sql.DB
}

// NewProspectRepository creates a new PostgreSQL repository for prospects
func NewProspectRepository(db *sql.DB) domain.ProspectRepository {
	return &prospectRepository{db: db}
}

const prospectColumns = `id, contact_name, email, phone, company_name, source,
	notes, status, converted_partner_id, created_at, updated_at`

func scanProspect(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Prospect, error) {
	var p domain.Prospect
	var phone, companyName, source, notes, convertedPartnerID sql.NullString

	err := scanner.Scan(
		&p.ID,
		&p.ContactName,
		&p.Email,
		&phone,
		&companyName,
		&source,
		&notes,
		&p.Status,
		&convertedPartnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Phone = phone.String
	p.CompanyName = companyName.String
	p.Source = source.String
	p.Notes = notes.String
	if convertedPartnerID.Valid {
		p.ConvertedPartnerID = &convertedPartnerID.String
	}

	return &p, nil
}

// Create persists a new prospect
func (r *prospectRepository) Create(ctx context.Context, prospect *domain.Prospect) error {
	now := time.Now().UTC()
	if prospect.ID == "" {
		prospect.ID = uuid.New().String()
	}
	prospect.CreatedAt = now
	prospect.UpdatedAt = now

	query := `
		INSERT INTO prospects (
			id, contact_name, email, phone, company_name, source,
			notes, status, converted_partner_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		prospect.ID,
		prospect.ContactName,
		prospect.Email,
		nullString(prospect.Phone),
		nullString(prospect.CompanyName),
		nullString(prospect.Source),
		nullString(prospect.Notes),
		prospect.Status,
		prospect.ConvertedPartnerID,
		prospect.CreatedAt,
		prospect.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}

	return nil
}

// GetByID retrieves a prospect by its ID
func (r *prospectRepository) GetByID(ctx context.Context, id string) (*domain.Prospect, error) {
	query := fmt.Sprintf(`SELECT %s FROM prospects WHERE id = $1`, prospectColumns)

	prospect, err := scanProspect(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrProspectNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get prospect: %w", err)
	}

	return prospect, nil
}

// Update persists prospect changes
func (r *prospectRepository) Update(ctx context.Context, prospect *domain.Prospect) error {
	prospect.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE prospects SET
			contact_name = $2,
			email = $3,
			phone = $4,
			company_name = $5,
			source = $6,
			notes = $7,
			status = $8,
			converted_partner_id = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		prospect.ID,
		prospect.ContactName,
		prospect.Email,
		nullString(prospect.Phone),
		nullString(prospect.CompanyName),
		nullString(prospect.Source),
		nullString(prospect.Notes),
		prospect.Status,
		prospect.ConvertedPartnerID,
		prospect.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrProspectNotFound{ID: prospect.ID}
	}

	return nil
}

// List retrieves prospects, optionally filtered by status
func (r *prospectRepository) List(ctx context.Context, status domain.ProspectStatus, limit, offset int) ([]*domain.Prospect, error) {
	builder := sq.Select(prospectColumns).
		From("prospects").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build prospect list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects: %w", err)
	}
	defer rows.Close()

	var prospects []*domain.Prospect
	for rows.Next() {
		prospect, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prospect row: %w", err)
		}
		prospects = append(prospects, prospect)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through prospects: %w", err)
	}

	return prospects, nil
}
