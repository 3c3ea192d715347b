// Package schema defines the database schema.
//
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE
// statements; application code is the source of truth for legal values.
package schema

// TableDefinitions contains all the SQL statements to create the database tables
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		clerk_user_id VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS partners (
		id UUID PRIMARY KEY,
		partner_code VARCHAR(20) UNIQUE NOT NULL,
		type VARCHAR(30) NOT NULL,
		contact_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(50),
		company_name VARCHAR(255) NOT NULL,
		stage VARCHAR(30) NOT NULL,
		discovery_call_status VARCHAR(20) NOT NULL DEFAULT 'none',
		loi_status VARCHAR(20) NOT NULL DEFAULT 'none',
		contract_status VARCHAR(20) NOT NULL DEFAULT 'none',
		tipalti_status VARCHAR(20) NOT NULL DEFAULT 'none',
		tipalti_payee_id VARCHAR(100),
		discovery_call_at TIMESTAMP,
		loi_signed_at TIMESTAMP,
		contract_signed_at TIMESTAMP,
		activated_at TIMESTAMP,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_partners_stage ON partners(stage)`,
	`CREATE INDEX IF NOT EXISTS idx_partners_tipalti_payee_id ON partners(tipalti_payee_id)`,
	`CREATE TABLE IF NOT EXISTS partner_sequences (
		prefix VARCHAR(5) NOT NULL,
		year INT NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (prefix, year)
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id UUID PRIMARY KEY,
		partner_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		address_line_1 VARCHAR(255) NOT NULL,
		address_line_2 VARCHAR(255),
		city VARCHAR(100) NOT NULL,
		region VARCHAR(100),
		postcode VARCHAR(20),
		country VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_venues_partner_id ON venues(partner_id)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		venue_id UUID,
		serial VARCHAR(100) UNIQUE NOT NULL,
		mac_address VARCHAR(17),
		ownership VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		purchase_request_id UUID,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_venue_id ON devices(venue_id)`,
	`CREATE TABLE IF NOT EXISTS device_purchase_requests (
		id UUID PRIMARY KEY,
		partner_id UUID NOT NULL,
		product_id UUID NOT NULL,
		venue_id UUID,
		quantity INT NOT NULL,
		status VARCHAR(30) NOT NULL,
		notes TEXT,
		approved_by UUID,
		approved_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_requests_partner_id ON device_purchase_requests(partner_id)`,
	`CREATE TABLE IF NOT EXISTS tipalti_payments (
		id UUID PRIMARY KEY,
		ref_code VARCHAR(100) UNIQUE NOT NULL,
		payee_id VARCHAR(100) NOT NULL,
		partner_id UUID,
		amount_cents BIGINT NOT NULL,
		currency VARCHAR(3) NOT NULL,
		status VARCHAR(20) NOT NULL,
		failure_code VARCHAR(100),
		submitted_at TIMESTAMP,
		completed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tipalti_payments_payee_id ON tipalti_payments(payee_id)`,
	`CREATE TABLE IF NOT EXISTS monthly_commissions (
		id UUID PRIMARY KEY,
		partner_id UUID NOT NULL,
		period VARCHAR(7) NOT NULL,
		device_count INT NOT NULL,
		amount_cents BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (partner_id, period)
	)`,
	`CREATE TABLE IF NOT EXISTS prospects (
		id UUID PRIMARY KEY,
		contact_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(50),
		company_name VARCHAR(255),
		source VARCHAR(100),
		notes TEXT,
		status VARCHAR(20) NOT NULL,
		converted_partner_id UUID,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blog_posts (
		id UUID PRIMARY KEY,
		slug VARCHAR(255) UNIQUE NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		excerpt TEXT,
		author_id UUID,
		status VARCHAR(20) NOT NULL,
		published_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		sku VARCHAR(100) UNIQUE NOT NULL,
		price_cents BIGINT NOT NULL,
		currency VARCHAR(3) NOT NULL,
		status VARCHAR(20) NOT NULL,
		stripe_product_id VARCHAR(100),
		stripe_price_id VARCHAR(100),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id UUID PRIMARY KEY,
		entity_type VARCHAR(30) NOT NULL,
		entity_id VARCHAR(100) NOT NULL,
		action VARCHAR(100) NOT NULL,
		actor VARCHAR(100) NOT NULL,
		detail TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_entity ON activity_log(entity_type, entity_id)`,
	`CREATE TABLE IF NOT EXISTS webhook_events (
		id UUID PRIMARY KEY,
		provider VARCHAR(20) NOT NULL,
		event_type VARCHAR(100) NOT NULL,
		external_id VARCHAR(255),
		partner_id UUID,
		outcome VARCHAR(20) NOT NULL,
		error TEXT,
		raw_payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_events_external ON webhook_events(provider, external_id)`,
}
