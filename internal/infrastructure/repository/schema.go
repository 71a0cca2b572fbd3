package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schemas are applied in order; each statement is idempotent.
var Schemas = []string{`
CREATE TABLE IF NOT EXISTS room_template (
	channel_id BIGINT PRIMARY KEY,
	guild_id BIGINT NOT NULL,
	category_id BIGINT NOT NULL,
	suffix VARCHAR(16) NOT NULL
);
`, `
CREATE INDEX IF NOT EXISTS room_template_category_id_idx ON room_template (category_id);
`, `
CREATE TABLE IF NOT EXISTS monitored_room (
	channel_id BIGINT PRIMARY KEY,
	owner_id BIGINT NOT NULL
);
`, `
CREATE INDEX IF NOT EXISTS monitored_room_owner_id_idx ON monitored_room (owner_id);
`, `
CREATE TABLE IF NOT EXISTS saved_profile (
	id BIGSERIAL PRIMARY KEY,
	owner_id BIGINT NOT NULL,
	name VARCHAR(32) NOT NULL,
	room_name VARCHAR(100) NOT NULL,
	template_id BIGINT NOT NULL REFERENCES room_template(channel_id) ON DELETE CASCADE
);
`, `
CREATE TABLE IF NOT EXISTS saved_guest (
	profile_id BIGINT NOT NULL REFERENCES saved_profile(id) ON DELETE CASCADE,
	guest_id BIGINT NOT NULL,

	PRIMARY KEY (profile_id, guest_id)
);
`}

// Migrate creates missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range Schemas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema %d: %w", i, err)
		}
	}
	return nil
}
