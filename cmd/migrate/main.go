package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"binroute-backend/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx := context.Background()
	if err := database.SeedTrucks(ctx, database.NewPostgresStore(db)); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Migration completed successfully!")

	var result struct {
		Bins         int `db:"bins"`
		FullBins     int `db:"full_bins"`
		Trucks       int `db:"trucks"`
		LockedTrucks int `db:"locked_trucks"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM bins) AS bins,
			(SELECT COUNT(*) FROM bins WHERE fill_level > 70) AS full_bins,
			(SELECT COUNT(*) FROM trucks) AS trucks,
			(SELECT COUNT(*) FROM trucks WHERE route_locked) AS locked_trucks
	`

	if err := db.GetContext(ctx, &result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Bins:                    %d\n", result.Bins)
	fmt.Printf("Bins above 70%% full:     %d\n", result.FullBins)
	fmt.Printf("Trucks:                  %d\n", result.Trucks)
	fmt.Printf("Trucks on a locked route: %d\n", result.LockedTrucks)
	fmt.Println("============================================================")
}
