package database

import (
	"context"
	"errors"
	"time"

	"binroute-backend/internal/models"
)

// ErrNotFound is returned when a bin or truck id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the record store shared by the routing engine, the sensor
// ingestion path and the HTTP layer. Every mutation goes through it.
type Store interface {
	// Bins
	ListBins(ctx context.Context) ([]models.Bin, error)
	GetBin(ctx context.Context, id int64) (models.Bin, error)
	// UpsertBinReading creates the bin on its first report. Later reports only
	// touch fill_level and last_updated.
	UpsertBinReading(ctx context.Context, reading BinReading) (models.Bin, bool, error)

	// Trucks
	ListTrucks(ctx context.Context) ([]models.Truck, error)
	GetTruck(ctx context.Context, id int64) (models.Truck, error)
	CreateTruck(ctx context.Context, truck models.Truck) (models.Truck, error)
	SaveTruck(ctx context.Context, truck models.Truck) error
	// SaveTruckRoutes persists route fields for several trucks in one unit.
	SaveTruckRoutes(ctx context.Context, trucks []models.Truck) error
	// CollectStop persists the truck's new position/index and empties the
	// visited bin in one unit. A missing bin is not an error.
	CollectStop(ctx context.Context, truck models.Truck, binID int64, collectedAt time.Time) error
}

// BinReading is a validated sensor report ready to be stored.
type BinReading struct {
	ID         int64
	Name       string
	Latitude   float64
	Longitude  float64
	FillLevel  float64
	ReceivedAt time.Time
}
