package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  name        VARCHAR(120)    NOT NULL,
  email       VARCHAR(190)    NOT NULL,
  code        CHAR(6)         NULL,
  role        VARCHAR(16)     NOT NULL DEFAULT 'CUSTOMER',
  is_active   TINYINT(1)      NOT NULL DEFAULT 1,
  created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_users_email (email),
  UNIQUE KEY uq_users_code (code)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS parking_spots (
  id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  spot_number  INT             NOT NULL,
  name         VARCHAR(32)     NOT NULL,
  location     VARCHAR(120)    NOT NULL DEFAULT '',
  is_active    TINYINT(1)      NOT NULL DEFAULT 1,
  created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_spots_number (spot_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
  id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  owner_id          BIGINT UNSIGNED NOT NULL,
  code              CHAR(6)         NOT NULL,
  spot_id           BIGINT UNSIGNED NOT NULL,
  start_time        DATETIME        NOT NULL,
  end_time          DATETIME        NOT NULL,
  reservation_date  DATETIME        NOT NULL,
  status            ENUM('pending','confirmed','cancelled','completed') NOT NULL DEFAULT 'confirmed',
  created_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_res_spot_day (spot_id, reservation_date, status),
  KEY idx_res_owner_day (owner_id, reservation_date),
  KEY idx_res_code (code, status),
  KEY idx_res_status_end (status, end_time),
  CONSTRAINT fk_res_owner FOREIGN KEY (owner_id) REFERENCES users (id),
  CONSTRAINT fk_res_spot FOREIGN KEY (spot_id) REFERENCES parking_spots (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
  id                      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  recipient_user_id       BIGINT UNSIGNED NOT NULL,
  kind                    VARCHAR(32)     NOT NULL,
  title                   VARCHAR(160)    NOT NULL,
  message                 VARCHAR(1000)   NOT NULL,
  related_reservation_id  BIGINT UNSIGNED NULL,
  related_spot_number     INT             NULL,
  is_read                 TINYINT(1)      NOT NULL DEFAULT 0,
  created_at              DATETIME        NOT NULL,
  expires_at              DATETIME        NOT NULL,
  PRIMARY KEY (id),
  KEY idx_notif_recipient (recipient_user_id, created_at),
  KEY idx_notif_expires (expires_at),
  CONSTRAINT fk_notif_user FOREIGN KEY (recipient_user_id) REFERENCES users (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the store needs.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

// DefaultSpots is the spot pool seeded by `db seed`.
var DefaultSpots = []model.ParkingSpot{
	{SpotNumber: 1, Name: "A1", Location: "Level 1, Section A", IsActive: true},
	{SpotNumber: 2, Name: "A2", Location: "Level 1, Section A", IsActive: true},
	{SpotNumber: 3, Name: "B1", Location: "Level 1, Section B", IsActive: true},
	{SpotNumber: 4, Name: "B2", Location: "Level 1, Section B", IsActive: true},
}
