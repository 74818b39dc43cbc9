package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"binroute-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	binColumns   = `id, name, latitude, longitude, fill_level, last_updated, last_collected`
	truckColumns = `id, name, latitude, longitude, capacity, status, current_index, route_locked, assigned_route`
)

// PostgresStore implements Store on top of sqlx + lib/pq.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) ListBins(ctx context.Context) ([]models.Bin, error) {
	bins := []models.Bin{}
	if err := p.db.SelectContext(ctx, &bins, `SELECT `+binColumns+` FROM bins ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	return bins, nil
}

func (p *PostgresStore) GetBin(ctx context.Context, id int64) (models.Bin, error) {
	var bin models.Bin
	err := p.db.GetContext(ctx, &bin, `SELECT `+binColumns+` FROM bins WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bin{}, ErrNotFound
	}
	if err != nil {
		return models.Bin{}, fmt.Errorf("get bin %d: %w", id, err)
	}
	return bin, nil
}

func (p *PostgresStore) UpsertBinReading(ctx context.Context, reading BinReading) (models.Bin, bool, error) {
	var row struct {
		models.Bin
		Inserted bool `db:"inserted"`
	}

	// xmax = 0 only for freshly inserted tuples
	query := `
		INSERT INTO bins (id, name, latitude, longitude, fill_level, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			fill_level = EXCLUDED.fill_level,
			last_updated = EXCLUDED.last_updated
		RETURNING ` + binColumns + `, (xmax = 0) AS inserted
	`
	err := p.db.GetContext(ctx, &row, query,
		reading.ID, reading.Name, reading.Latitude, reading.Longitude,
		reading.FillLevel, reading.ReceivedAt.Unix(),
	)
	if err != nil {
		return models.Bin{}, false, fmt.Errorf("upsert bin %d: %w", reading.ID, err)
	}
	return row.Bin, row.Inserted, nil
}

func (p *PostgresStore) ListTrucks(ctx context.Context) ([]models.Truck, error) {
	trucks := []models.Truck{}
	if err := p.db.SelectContext(ctx, &trucks, `SELECT `+truckColumns+` FROM trucks ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	return trucks, nil
}

func (p *PostgresStore) GetTruck(ctx context.Context, id int64) (models.Truck, error) {
	var truck models.Truck
	err := p.db.GetContext(ctx, &truck, `SELECT `+truckColumns+` FROM trucks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Truck{}, ErrNotFound
	}
	if err != nil {
		return models.Truck{}, fmt.Errorf("get truck %d: %w", id, err)
	}
	return truck, nil
}

func (p *PostgresStore) CreateTruck(ctx context.Context, truck models.Truck) (models.Truck, error) {
	if truck.Status == "" {
		truck.Status = models.TruckStatusIdle
	}

	query := `
		INSERT INTO trucks (name, latitude, longitude, capacity, status, current_index, route_locked, assigned_route)
		VALUES (:name, :latitude, :longitude, :capacity, :status, :current_index, :route_locked, :assigned_route)
		RETURNING id
	`
	rows, err := p.db.NamedQueryContext(ctx, query, truck)
	if err != nil {
		return models.Truck{}, fmt.Errorf("create truck %q: %w", truck.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return models.Truck{}, fmt.Errorf("create truck %q: no id returned", truck.Name)
	}
	if err := rows.Scan(&truck.ID); err != nil {
		return models.Truck{}, fmt.Errorf("create truck %q: scan id: %w", truck.Name, err)
	}
	return truck, nil
}

func (p *PostgresStore) SaveTruck(ctx context.Context, truck models.Truck) error {
	return saveTruck(ctx, p.db, truck)
}

func (p *PostgresStore) SaveTruckRoutes(ctx context.Context, trucks []models.Truck) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save truck routes: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range trucks {
		if err := saveTruck(ctx, tx, t); err != nil {
			return fmt.Errorf("save truck routes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save truck routes: commit tx: %w", err)
	}
	return nil
}

func (p *PostgresStore) CollectStop(ctx context.Context, truck models.Truck, binID int64, collectedAt time.Time) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("collect stop: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := saveTruck(ctx, tx, truck); err != nil {
		return fmt.Errorf("collect stop: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bins
		SET fill_level = 0, last_collected = $2
		WHERE id = $1
	`, binID, collectedAt.Unix())
	if err != nil {
		return fmt.Errorf("collect stop: reset bin %d: %w", binID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("collect stop: commit tx: %w", err)
	}
	return nil
}

func saveTruck(ctx context.Context, ext sqlx.ExtContext, truck models.Truck) error {
	result, err := ext.ExecContext(ctx, `
		UPDATE trucks
		SET latitude = $2, longitude = $3, status = $4, current_index = $5,
		    route_locked = $6, assigned_route = $7,
		    updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $1
	`, truck.ID, truck.Latitude, truck.Longitude, truck.Status, truck.CurrentIndex,
		truck.RouteLocked, truck.AssignedRoute)
	if err != nil {
		return fmt.Errorf("update truck %d: %w", truck.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update truck %d: %w", truck.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update truck %d: %w", truck.ID, ErrNotFound)
	}
	return nil
}
