package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// RunMigrations applies the idempotent schema statements in order
func RunMigrations(ctx context.Context, db DB, logger *logrus.Logger) error {
	logger.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createRefreshTokensTable,
		createLoginAttemptsTable,
		createAuditLogsTable,
		createDestinationsTable,
		createHotelsTable,
		createRoomsTable,
		createFlightsTable,
		createToursTable,
		createBookingsTable,
		createPaymentsTable,
		createPaymentAuditsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		logger.WithField("step", i+1).Debug("Running migration")
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	logger.WithField("count", len(migrations)).Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'CUSTOMER' CHECK (role IN ('ADMIN', 'CUSTOMER', 'AGENT')),
    phone VARCHAR(20),
    address VARCHAR(255),
    profile_picture TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token_hash VARCHAR(64) NOT NULL UNIQUE,
    ip_address VARCHAR(64),
    user_agent TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_used_at TIMESTAMPTZ,
    revoked BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ
);`

const createLoginAttemptsTable = `
CREATE TABLE IF NOT EXISTS login_attempts (
    id BIGSERIAL PRIMARY KEY,
    identifier VARCHAR(255) NOT NULL,
    identifier_type VARCHAR(10) NOT NULL CHECK (identifier_type IN ('email', 'ip')),
    success BOOLEAN NOT NULL DEFAULT FALSE,
    attempted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAuditLogsTable = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID,
    action VARCHAR(50) NOT NULL,
    entity_type VARCHAR(50),
    entity_id UUID,
    ip_address VARCHAR(64),
    user_agent TEXT,
    details JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createDestinationsTable = `
CREATE TABLE IF NOT EXISTS destinations (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    country VARCHAR(100) NOT NULL,
    city VARCHAR(100) NOT NULL,
    photo TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS destinations_name_country_city_key
    ON destinations (LOWER(name), LOWER(country), LOWER(city));`

const createHotelsTable = `
CREATE TABLE IF NOT EXISTS hotels (
    id UUID PRIMARY KEY,
    destination_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE,
    name VARCHAR(150) NOT NULL,
    address VARCHAR(255) NOT NULL,
    rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    amenities TEXT[] NOT NULL DEFAULT '{}',
    photo TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createRoomsTable = `
CREATE TABLE IF NOT EXISTS rooms (
    id UUID PRIMARY KEY,
    hotel_id UUID NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
    room_type VARCHAR(20) NOT NULL,
    price NUMERIC(12,2) NOT NULL CHECK (price > 0),
    capacity INTEGER NOT NULL CHECK (capacity > 0),
    available BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id UUID PRIMARY KEY,
    flight_number VARCHAR(10) NOT NULL,
    airline VARCHAR(100) NOT NULL,
    origin_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE,
    destination_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE,
    departure_time TIMESTAMPTZ NOT NULL,
    arrival_time TIMESTAMPTZ NOT NULL,
    price NUMERIC(12,2) NOT NULL CHECK (price > 0),
    seat_capacity INTEGER NOT NULL CHECK (seat_capacity > 0),
    seats_booked INTEGER NOT NULL DEFAULT 0,
    class VARCHAR(20) NOT NULL CHECK (class IN ('ECONOMY', 'BUSINESS', 'FIRST_CLASS', 'PREMIUM_ECONOMY')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT flights_schedule_check CHECK (arrival_time > departure_time),
    CONSTRAINT flights_route_check CHECK (origin_id <> destination_id),
    CONSTRAINT flights_seats_check CHECK (seats_booked BETWEEN 0 AND seat_capacity)
);`

const createToursTable = `
CREATE TABLE IF NOT EXISTS tours (
    id UUID PRIMARY KEY,
    name VARCHAR(150) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type VARCHAR(20) NOT NULL CHECK (type IN ('ADVENTURE', 'CULTURAL', 'BEACH', 'CITY', 'WILDLIFE', 'CRUISE')),
    status VARCHAR(20) NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'ONGOING', 'COMPLETED', 'CANCELLED')),
    price NUMERIC(12,2) NOT NULL CHECK (price > 0),
    max_guests INTEGER NOT NULL CHECK (max_guests > 0),
    guests_booked INTEGER NOT NULL DEFAULT 0,
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT tours_dates_check CHECK (end_date > start_date),
    CONSTRAINT tours_guests_check CHECK (guests_booked BETWEEN 0 AND max_guests)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    booking_type VARCHAR(10) NOT NULL CHECK (booking_type IN ('TOUR', 'ROOM', 'FLIGHT')),
    tour_id UUID REFERENCES tours(id) ON DELETE RESTRICT,
    room_id UUID REFERENCES rooms(id) ON DELETE RESTRICT,
    flight_id UUID REFERENCES flights(id) ON DELETE RESTRICT,
    quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    unit_price NUMERIC(12,2) NOT NULL,
    total_price NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED')),
    notes TEXT NOT NULL DEFAULT '',
    booking_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    cancelled_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT bookings_single_item_check CHECK (num_nonnulls(tour_id, room_id, flight_id) = 1),
    CONSTRAINT bookings_type_matches_check CHECK (
        (booking_type = 'TOUR' AND tour_id IS NOT NULL) OR
        (booking_type = 'ROOM' AND room_id IS NOT NULL) OR
        (booking_type = 'FLIGHT' AND flight_id IS NOT NULL)
    )
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    currency CHAR(3) NOT NULL,
    payment_method VARCHAR(20) NOT NULL CHECK (payment_method IN ('CREDIT_CARD', 'DEBIT_CARD', 'MOBILE_MONEY', 'BANK_TRANSFER')),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED')),
    transaction_reference VARCHAR(100) NOT NULL UNIQUE,
    authorization_url TEXT,
    gateway_access_code VARCHAR(100),
    gateway_status VARCHAR(50),
    failure_reason TEXT,
    refund_reason TEXT,
    paid_at TIMESTAMPTZ,
    refunded_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS payments_booking_active_key
    ON payments (booking_id) WHERE status IN ('PENDING', 'COMPLETED');`

const createPaymentAuditsTable = `
CREATE TABLE IF NOT EXISTS payment_audits (
    id UUID PRIMARY KEY,
    payment_id UUID,
    booking_id UUID,
    transaction_reference VARCHAR(100),
    event_type VARCHAR(50) NOT NULL,
    event_source VARCHAR(50) NOT NULL,
    expected_amount NUMERIC(12,2),
    received_amount NUMERIC(12,2),
    currency CHAR(3),
    amounts_match BOOLEAN,
    payment_status VARCHAR(20),
    gateway_status VARCHAR(50),
    payload JSONB,
    http_status_code INTEGER,
    error_message TEXT,
    processing_time_ms INTEGER,
    is_duplicate BOOLEAN NOT NULL DEFAULT FALSE,
    ip_address VARCHAR(64),
    user_agent TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id);
CREATE INDEX IF NOT EXISTS idx_login_attempts_lookup ON login_attempts (identifier, identifier_type, attempted_at);
CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_hotels_destination ON hotels (destination_id);
CREATE INDEX IF NOT EXISTS idx_rooms_hotel ON rooms (hotel_id);
CREATE INDEX IF NOT EXISTS idx_flights_route ON flights (origin_id, destination_id, departure_time);
CREATE INDEX IF NOT EXISTS idx_tours_start ON tours (start_date);
CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, booking_date);
CREATE INDEX IF NOT EXISTS idx_bookings_tour ON bookings (tour_id) WHERE tour_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_bookings_status_date ON bookings (status, booking_date);
CREATE INDEX IF NOT EXISTS idx_payments_status_created ON payments (status, created_at);
CREATE INDEX IF NOT EXISTS idx_payment_audits_reference ON payment_audits (transaction_reference, created_at);`
