package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables if they do not exist.  Seats reference their
// flight; reservations reference flight and user.  active_seat_id is only
// set while a reservation is CONFIRMED, so its unique index allows one
// active reservation per seat next to any number of cancelled ones.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(120) NOT NULL DEFAULT '',
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('CUSTOMER','ADMIN') NOT NULL DEFAULT 'CUSTOMER',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS flights (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		flight_number VARCHAR(32) NOT NULL,
		origin        VARCHAR(120) NOT NULL,
		destination   VARCHAR(120) NOT NULL,
		departure_at  DATETIME NOT NULL,
		arrival_at    DATETIME NOT NULL,
		status        ENUM('SCHEDULED','CANCELLED') NOT NULL DEFAULT 'SCHEDULED',
		seat_capacity INT UNSIGNED NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_flights_number (flight_number),
		KEY idx_flights_departure (status, departure_at),
		CHECK (arrival_at > departure_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		flight_id   BIGINT UNSIGNED NOT NULL,
		seat_number VARCHAR(8) NOT NULL,
		cabin_class ENUM('FIRST','BUSINESS','ECONOMY') NOT NULL,
		status      ENUM('AVAILABLE','RESERVED','OCCUPIED') NOT NULL DEFAULT 'AVAILABLE',
		UNIQUE KEY uq_seats_flight_number (flight_id, seat_number),
		KEY idx_seats_flight_status (flight_id, status),
		CONSTRAINT fk_seats_flight FOREIGN KEY (flight_id) REFERENCES flights (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		flight_id      BIGINT UNSIGNED NOT NULL,
		seat_id        BIGINT UNSIGNED NOT NULL,
		status         ENUM('CONFIRMED','CANCELLED') NOT NULL DEFAULT 'CONFIRMED',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		active_seat_id BIGINT UNSIGNED AS (IF(status = 'CONFIRMED', seat_id, NULL)) STORED,
		UNIQUE KEY uq_reservations_active_seat (active_seat_id),
		KEY idx_reservations_user (user_id, status),
		KEY idx_reservations_flight (flight_id, status),
		KEY idx_reservations_seat (seat_id, status),
		CONSTRAINT fk_reservations_flight FOREIGN KEY (flight_id) REFERENCES flights (id),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
