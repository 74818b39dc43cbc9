package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ sqlx.Connect() failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Ping() failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Bins are keyed by the sensor-assigned id, never deleted
		`CREATE TABLE IF NOT EXISTS bins (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			fill_level DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_updated BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			last_collected BIGINT
		)`,

		// Trucks carry their locked route as a JSONB snapshot list
		`CREATE TABLE IF NOT EXISTS trucks (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			capacity DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL DEFAULT 'idle',
			current_index INT NOT NULL DEFAULT 0,
			route_locked BOOLEAN NOT NULL DEFAULT FALSE,
			assigned_route JSONB,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			CHECK (current_index >= 0)
		)`,

		`ALTER TABLE trucks DROP CONSTRAINT IF EXISTS trucks_status_check`,
		`ALTER TABLE trucks ADD CONSTRAINT trucks_status_check CHECK(status IN ('idle', 'assigned', 'moving', 'completed'))`,

		`CREATE INDEX IF NOT EXISTS idx_bins_fill_level ON bins(fill_level DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_last_collected ON bins(last_collected)`,
		`CREATE INDEX IF NOT EXISTS idx_trucks_route_locked ON trucks(route_locked)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
