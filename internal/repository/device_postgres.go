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

type deviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new PostgreSQL repository for devices
func NewDeviceRepository(db *sql.DB) domain.DeviceRepository {
	return &deviceRepository{db: db}
}

const deviceColumns = `id, venue_id, serial, mac_address, ownership, status,
	purchase_request_id, created_at, updated_at`

func scanDevice(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Device, error) {
	var d domain.Device
	var venueID, macAddress, purchaseRequestID sql.NullString

	err := scanner.Scan(
		&d.ID,
		&venueID,
		&d.Serial,
		&macAddress,
		&d.Ownership,
		&d.Status,
		&purchaseRequestID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if venueID.Valid {
		d.VenueID = &venueID.String
	}
	d.MACAddress = macAddress.String
	if purchaseRequestID.Valid {
		d.PurchaseRequestID = &purchaseRequestID.String
	}

	return &d, nil
}

const insertDeviceQuery = `
	INSERT INTO devices (
		id, venue_id, serial, mac_address, ownership, status,
		purchase_request_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Create persists a new device
func (r *deviceRepository) Create(ctx context.Context, device *domain.Device) error {
	prepareDevice(device)

	_, err := r.db.ExecContext(ctx, insertDeviceQuery, deviceInsertArgs(device)...)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// CreateTx persists a new device within a transaction
func (r *deviceRepository) CreateTx(ctx context.Context, tx *sql.Tx, device *domain.Device) error {
	prepareDevice(device)

	_, err := tx.ExecContext(ctx, insertDeviceQuery, deviceInsertArgs(device)...)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func prepareDevice(device *domain.Device) {
	now := time.Now().UTC()
	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	device.CreatedAt = now
	device.UpdatedAt = now
}

func deviceInsertArgs(device *domain.Device) []interface{} {
	return []interface{}{
		device.ID,
		device.VenueID,
		device.Serial,
		nullString(device.MACAddress),
		device.Ownership,
		device.Status,
		device.PurchaseRequestID,
		device.CreatedAt,
		device.UpdatedAt,
	}
}

// GetByID retrieves a device by its ID
func (r *deviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE id = $1`, deviceColumns)

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrDeviceNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// GetBySerial retrieves a device by its serial number
func (r *deviceRepository) GetBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE serial = $1`, deviceColumns)

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, serial))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrDeviceNotFound{ID: serial}
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// Update persists device changes
func (r *deviceRepository) Update(ctx context.Context, device *domain.Device) error {
	device.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE devices SET
			venue_id = $2,
			mac_address = $3,
			ownership = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		device.ID,
		device.VenueID,
		nullString(device.MACAddress),
		device.Ownership,
		device.Status,
		device.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrDeviceNotFound{ID: device.ID}
	}

	return nil
}

// ListByVenue retrieves all devices installed at a venue
func (r *deviceRepository) ListByVenue(ctx context.Context, venueID string) ([]*domain.Device, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM devices
		WHERE venue_id = $1
		ORDER BY created_at DESC
	`, deviceColumns)

	rows, err := r.db.QueryContext(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	return collectDevices(rows)
}

// List retrieves devices, optionally filtered by status
func (r *deviceRepository) List(ctx context.Context, status domain.DeviceStatus, limit, offset int) ([]*domain.Device, error) {
	builder := sq.Select(deviceColumns).
		From("devices").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build device list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	return collectDevices(rows)
}

// CountActiveByPartner counts active devices across a partner's venues
func (r *deviceRepository) CountActiveByPartner(ctx context.Context, partnerID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM devices d
		JOIN venues v ON v.id = d.venue_id
		WHERE v.partner_id = $1 AND d.status = 'active'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, partnerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}

	return count, nil
}

func collectDevices(rows *sql.Rows) ([]*domain.Device, error) {
	var devices []*domain.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through devices: %w", err)
	}
	return devices, nil
}
