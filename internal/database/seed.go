package database

import (
	"context"
	"fmt"
	"log"

	"binroute-backend/internal/models"
)

// DefaultFleet is the fixed fleet created on first start.
var DefaultFleet = []models.Truck{
	{Name: "Truck 1", Latitude: 18.5308, Longitude: 73.8478, Capacity: 500, Status: models.TruckStatusIdle},
	{Name: "Truck 2", Latitude: 18.5350, Longitude: 73.8500, Capacity: 500, Status: models.TruckStatusIdle},
}

// SeedTrucks creates the default fleet when the store has no trucks yet.
func SeedTrucks(ctx context.Context, store Store) error {
	existing, err := store.ListTrucks(ctx)
	if err != nil {
		return fmt.Errorf("seed trucks: %w", err)
	}

	if len(existing) > 0 {
		log.Printf("✓ Trucks already seeded (%d), skipping...", len(existing))
		return nil
	}

	log.Printf("🌱 Seeding %d trucks...", len(DefaultFleet))
	for _, t := range DefaultFleet {
		created, err := store.CreateTruck(ctx, t)
		if err != nil {
			return fmt.Errorf("seed trucks: %w", err)
		}
		log.Printf("  ✓ Created truck #%d: %s (capacity %.0f)", created.ID, created.Name, created.Capacity)
	}

	log.Println("✓ Successfully seeded trucks")
	return nil
}
