package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"binroute-backend/internal/database"
	"binroute-backend/internal/events"
	"binroute-backend/internal/metrics"
	"binroute-backend/internal/models"
)

// ValidationError is a rejected sensor reading. Handlers answer 400 with it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IngestionService stores sensor readings. It never touches the route
// engine lock, so the simulator can keep writing while routes are computed.
type IngestionService struct {
	store     database.Store
	publisher events.Publisher
	Now       func() time.Time
}

func NewIngestionService(store database.Store, publisher events.Publisher) *IngestionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &IngestionService{store: store, publisher: publisher, Now: time.Now}
}

// IngestReading creates the bin on its first report and otherwise only
// refreshes fill_level and last_updated.
func (s *IngestionService) IngestReading(ctx context.Context, reading models.SensorReading) (models.Bin, error) {
	if reading.ID <= 0 {
		metrics.SensorReadings.WithLabelValues("rejected").Inc()
		return models.Bin{}, &ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	if reading.FillLevel == nil {
		metrics.SensorReadings.WithLabelValues("rejected").Inc()
		return models.Bin{}, &ValidationError{Field: "fill_level", Message: "is required"}
	}
	if *reading.FillLevel < 0 {
		metrics.SensorReadings.WithLabelValues("rejected").Inc()
		return models.Bin{}, &ValidationError{Field: "fill_level", Message: "must not be negative"}
	}

	in := database.BinReading{
		ID:         reading.ID,
		Name:       reading.Name,
		FillLevel:  *reading.FillLevel,
		ReceivedAt: s.Now(),
	}

	// Coordinates are only needed when the bin is new
	if reading.Latitude == nil || reading.Longitude == nil {
		if _, err := s.store.GetBin(ctx, reading.ID); err != nil {
			metrics.SensorReadings.WithLabelValues("rejected").Inc()
			if errors.Is(err, database.ErrNotFound) {
				return models.Bin{}, &ValidationError{Field: "latitude/longitude", Message: "required for a new bin"}
			}
			return models.Bin{}, fmt.Errorf("ingest reading for bin %d: %w", reading.ID, err)
		}
	} else {
		in.Latitude = *reading.Latitude
		in.Longitude = *reading.Longitude
	}
	if in.Name == "" {
		in.Name = fmt.Sprintf("Bin %d", reading.ID)
	}

	bin, created, err := s.store.UpsertBinReading(ctx, in)
	if err != nil {
		metrics.SensorReadings.WithLabelValues("error").Inc()
		return models.Bin{}, fmt.Errorf("ingest reading for bin %d: %w", reading.ID, err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
		log.Printf("🗑️  New bin %d (%s) registered at (%.4f, %.4f)", bin.ID, bin.Name, bin.Latitude, bin.Longitude)
	}
	metrics.SensorReadings.WithLabelValues(outcome).Inc()

	s.publisher.Publish(ctx, events.New(events.BinReading, map[string]interface{}{
		"bin":     bin.ToBinResponse(),
		"created": created,
	}))

	return bin, nil
}
