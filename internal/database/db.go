package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the DDL for all tables, in dependency order.  The unique
// key on seat_holds (showtime_id, seat_id) is load-bearing: hold rows are
// deleted on expiry and release, so the key enforces at most one live
// hold per seat per showtime.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS theaters (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(128) NOT NULL DEFAULT '',
		phone_number VARCHAR(32) NOT NULL DEFAULT '',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS seat_layouts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		theater_id BIGINT UNSIGNED NOT NULL,
		screen_number INT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		total_rows INT UNSIGNED NOT NULL,
		total_seats INT UNSIGNED NOT NULL,
		row_configuration JSON NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_layout_screen (theater_id, screen_number),
		CONSTRAINT fk_layout_theater FOREIGN KEY (theater_id) REFERENCES theaters(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS seats (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		layout_id BIGINT UNSIGNED NOT NULL,
		row_label VARCHAR(4) NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		seat_type VARCHAR(16) NOT NULL DEFAULT 'standard',
		price_multiplier_pct INT UNSIGNED NOT NULL DEFAULT 100,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		UNIQUE KEY uq_seat_position (layout_id, row_label, seat_number),
		CONSTRAINT fk_seat_layout FOREIGN KEY (layout_id) REFERENCES seat_layouts(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_title VARCHAR(255) NOT NULL,
		theater_id BIGINT UNSIGNED NOT NULL,
		screen_number INT UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		total_seats INT UNSIGNED NOT NULL,
		available_seats INT UNSIGNED NOT NULL,
		ticket_price_cents BIGINT NOT NULL,
		layout_id BIGINT UNSIGNED NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_showtime_slot (theater_id, screen_number, starts_at),
		CONSTRAINT fk_showtime_theater FOREIGN KEY (theater_id) REFERENCES theaters(id),
		CONSTRAINT fk_showtime_layout FOREIGN KEY (layout_id) REFERENCES seat_layouts(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		external_id VARCHAR(64) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		loyalty_points INT UNSIGNED NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_customer_external (external_id),
		UNIQUE KEY uq_customer_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		booking_reference VARCHAR(16) NOT NULL,
		number_of_seats INT UNSIGNED NOT NULL,
		seat_numbers JSON NULL,
		subtotal_cents BIGINT NOT NULL,
		discount_cents BIGINT NOT NULL DEFAULT 0,
		total_cents BIGINT NOT NULL,
		base_price_cents BIGINT NOT NULL,
		loyalty_points_used INT UNSIGNED NOT NULL DEFAULT 0,
		special_requests TEXT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		confirmed_at DATETIME NULL,
		cancelled_at DATETIME NULL,
		UNIQUE KEY uq_booking_reference (booking_reference),
		KEY idx_booking_customer (customer_id),
		CONSTRAINT fk_booking_customer FOREIGN KEY (customer_id) REFERENCES customers(id),
		CONSTRAINT fk_booking_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS seat_holds (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_id BIGINT UNSIGNED NOT NULL,
		customer_id BIGINT UNSIGNED NOT NULL,
		booking_id BIGINT UNSIGNED NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'reserved',
		expires_at DATETIME NOT NULL,
		confirmed_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_hold_seat (showtime_id, seat_id),
		KEY idx_hold_booking (booking_id),
		KEY idx_hold_expiry (status, expires_at),
		CONSTRAINT fk_hold_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id),
		CONSTRAINT fk_hold_seat FOREIGN KEY (seat_id) REFERENCES seats(id),
		CONSTRAINT fk_hold_customer FOREIGN KEY (customer_id) REFERENCES customers(id),
		CONSTRAINT fk_hold_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NOT NULL,
		amount_cents BIGINT NOT NULL,
		payment_method VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		transaction_id VARCHAR(64) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME NULL,
		UNIQUE KEY uq_payment_booking (booking_id),
		CONSTRAINT fk_payment_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates any missing tables.  Statements are idempotent, so
// running it on every startup is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
