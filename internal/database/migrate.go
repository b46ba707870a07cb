package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_name TEXT NOT NULL,
		event_date TEXT NOT NULL DEFAULT '',
		event_time TEXT NOT NULL DEFAULT '',
		location_name TEXT NOT NULL DEFAULT '',
		google_maps_url TEXT NOT NULL DEFAULT '',
		event_type TEXT NOT NULL DEFAULT 'wedding'
			CHECK (event_type IN ('wedding', 'birthday', 'graduation', 'party')),
		theme_slug TEXT NOT NULL DEFAULT 'modern'
			CHECK (theme_slug IN ('modern', 'classic', 'romantic', 'luxury', 'nature', 'vintage', 'minimalist', 'royal', 'ethereal')),
		hero_image TEXT,
		gallery_images TEXT[] NOT NULL DEFAULT '{}',
		gallery_layout TEXT NOT NULL DEFAULT 'masonry'
			CHECK (gallery_layout IN ('masonry', 'grid', 'carousel', 'stack')),
		bri_account_number TEXT,
		bri_account_name TEXT,
		shopeepay_number TEXT,
		shopeepay_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_created ON events (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS guests (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		guest_name TEXT NOT NULL,
		unique_slug TEXT NOT NULL,
		status_rsvp TEXT NOT NULL DEFAULT 'Pending'
			CHECK (status_rsvp IN ('Pending', 'Hadir', 'Tidak Hadir')),
		phone_number TEXT,
		instagram TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT guests_unique_slug_key UNIQUE (unique_slug)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_event_name ON guests (event_id, guest_name)`,
	`CREATE TABLE IF NOT EXISTS wishes (
		id UUID PRIMARY KEY,
		guest_id UUID NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wishes_guest_created ON wishes (guest_id, created_at DESC)`,
}

// RunMigrations creates the schema if it does not exist yet. Every statement
// is idempotent so it runs on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
