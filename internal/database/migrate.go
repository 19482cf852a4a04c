package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet.  Statements are
// idempotent so the call is safe on every startup and from tests.
//
// The unique key on performance_reviews (performance_id, user_phone)
// is load-bearing: it is the enforcement behind one review per
// identity, not just an index.  Likewise the unique session key is
// what FOR UPDATE locks to serialize bookings per session.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS performances (
            id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            title       VARCHAR(255) NOT NULL,
            description TEXT NOT NULL,
            location    VARCHAR(255) NOT NULL,
            latitude    DOUBLE NULL,
            longitude   DOUBLE NULL,
            price       BIGINT NOT NULL,
            duration    VARCHAR(100) NOT NULL DEFAULT '',
            age_rating  VARCHAR(50) NOT NULL DEFAULT '',
            total_seats INT NOT NULL,
            date_range  VARCHAR(100) NOT NULL DEFAULT '',
            created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS performance_sessions (
            id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            performance_id BIGINT UNSIGNED NOT NULL,
            date           VARCHAR(20) NOT NULL,
            time           VARCHAR(40) NOT NULL DEFAULT '',
            PRIMARY KEY (id),
            UNIQUE KEY uq_session (performance_id, date, time),
            CONSTRAINT fk_session_performance FOREIGN KEY (performance_id)
                REFERENCES performances (id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS reservations (
            id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            performance_id BIGINT UNSIGNED NOT NULL,
            date           VARCHAR(20) NOT NULL,
            time           VARCHAR(40) NOT NULL DEFAULT '',
            name           VARCHAR(100) NOT NULL,
            phone          VARCHAR(20) NOT NULL,
            tickets        INT NOT NULL,
            total_price    BIGINT NOT NULL,
            paid           TINYINT(1) NOT NULL DEFAULT 0,
            cancelled_at   DATETIME NULL,
            created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (id),
            KEY idx_reservation_session (performance_id, date, time),
            KEY idx_reservation_phone (phone),
            CONSTRAINT fk_reservation_performance FOREIGN KEY (performance_id)
                REFERENCES performances (id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS performance_reviews (
            id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            performance_id BIGINT UNSIGNED NOT NULL,
            user_phone     VARCHAR(20) NOT NULL,
            user_name      VARCHAR(50) NOT NULL,
            content        TEXT NOT NULL,
            created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (id),
            UNIQUE KEY uq_review_identity (performance_id, user_phone),
            CONSTRAINT fk_review_performance FOREIGN KEY (performance_id)
                REFERENCES performances (id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
