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

type venueRepository struct {
	db *sql.DB
}

// NewVenueRepository creates a new PostgreSQL repository for venues
func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{db: db}
}

const venueColumns = `id, partner_id, name, address_line_1, address_line_2, city,
	region, postcode, country, status, created_at, updated_at`

func scanVenue(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Venue, error) {
	var v domain.Venue
	var addressLine2, region, postcode sql.NullString

	err := scanner.Scan(
		&v.ID,
		&v.PartnerID,
		&v.Name,
		&v.AddressLine1,
		&addressLine2,
		&v.City,
		&region,
		&postcode,
		&v.Country,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.AddressLine2 = addressLine2.String
	v.Region = region.String
	v.Postcode = postcode.String

	return &v, nil
}

// Create persists a new venue
func (r *venueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	now := time.Now().UTC()
	if venue.ID == "" {
		venue.ID = uuid.New().String()
	}
	venue.CreatedAt = now
	venue.UpdatedAt = now

	query := `
		INSERT INTO venues (
			id, partner_id, name, address_line_1, address_line_2, city,
			region, postcode, country, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		venue.ID,
		venue.PartnerID,
		venue.Name,
		venue.AddressLine1,
		nullString(venue.AddressLine2),
		venue.City,
		nullString(venue.Region),
		nullString(venue.Postcode),
		venue.Country,
		venue.Status,
		venue.CreatedAt,
		venue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}

	return nil
}

// GetByID retrieves a venue by its ID
func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := fmt.Sprintf(`SELECT %s FROM venues WHERE id = $1`, venueColumns)

	venue, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrVenueNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return venue, nil
}

// Update persists venue changes
func (r *venueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	venue.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE venues SET
			name = $2,
			address_line_1 = $3,
			address_line_2 = $4,
			city = $5,
			region = $6,
			postcode = $7,
			country = $8,
			status = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		venue.ID,
		venue.Name,
		venue.AddressLine1,
		nullString(venue.AddressLine2),
		venue.City,
		nullString(venue.Region),
		nullString(venue.Postcode),
		venue.Country,
		venue.Status,
		venue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrVenueNotFound{ID: venue.ID}
	}

	return nil
}

// ListByPartner retrieves all venues belonging to a partner
func (r *venueRepository) ListByPartner(ctx context.Context, partnerID string) ([]*domain.Venue, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM venues
		WHERE partner_id = $1
		ORDER BY created_at DESC
	`, venueColumns)

	rows, err := r.db.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	return collectVenues(rows)
}

// List retrieves venues, optionally filtered by status
func (r *venueRepository) List(ctx context.Context, status domain.VenueStatus, limit, offset int) ([]*domain.Venue, error) {
	builder := sq.Select(venueColumns).
		From("venues").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build venue list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	return collectVenues(rows)
}

// CountActiveByPartner counts venues in active or trial status for a partner
func (r *venueRepository) CountActiveByPartner(ctx context.Context, partnerID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM venues
		WHERE partner_id = $1 AND status IN ('active', 'trial')
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, partnerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}

	return count, nil
}

func collectVenues(rows *sql.Rows) ([]*domain.Venue, error) {
	var venues []*domain.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through venues: %w", err)
	}
	return venues, nil
}
