package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binroute-backend/internal/database"
	"binroute-backend/internal/events"
	"binroute-backend/internal/models"
)

func ptr(v float64) *float64 { return &v }

func newIngestion(t *testing.T) (*IngestionService, *database.MemoryStore, *recordingPublisher) {
	t.Helper()
	store := database.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := NewIngestionService(store, pub)
	svc.Now = func() time.Time { return testNow }
	return svc, store, pub
}

func TestIngestReadingCreatesBin(t *testing.T) {
	svc, store, pub := newIngestion(t)

	bin, err := svc.IngestReading(context.Background(), models.SensorReading{
		ID: 5, Latitude: ptr(18.53), Longitude: ptr(73.84), FillLevel: ptr(42),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bin 5", bin.Name)
	assert.Equal(t, 42.0, bin.FillLevel)
	assert.Equal(t, testNow.Unix(), bin.LastUpdated)
	assert.Nil(t, bin.LastCollected)

	stored, err := store.GetBin(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, bin, stored)

	published := pub.ofType(events.BinReading)
	require.Len(t, published, 1)
	assert.Equal(t, true, published[0].Data["created"])
}

func TestIngestReadingUpdatesFillOnly(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newIngestion(t)
	collected := testNow.Add(-time.Hour).Unix()
	store.PutBin(models.Bin{ID: 5, Name: "Depot corner", Latitude: 18.53, Longitude: 73.84, FillLevel: 10, LastCollected: &collected})

	bin, err := svc.IngestReading(ctx, models.SensorReading{ID: 5, Name: "ignored", Latitude: ptr(1), Longitude: ptr(2), FillLevel: ptr(88)})
	require.NoError(t, err)
	assert.Equal(t, "Depot corner", bin.Name)
	assert.Equal(t, 18.53, bin.Latitude)
	assert.Equal(t, 88.0, bin.FillLevel)
	require.NotNil(t, bin.LastCollected)
	assert.Equal(t, collected, *bin.LastCollected)

	// Coordinates may be omitted for a known bin
	bin, err = svc.IngestReading(ctx, models.SensorReading{ID: 5, FillLevel: ptr(91)})
	require.NoError(t, err)
	assert.Equal(t, 91.0, bin.FillLevel)
}

func TestIngestReadingValidation(t *testing.T) {
	cases := []struct {
		name    string
		reading models.SensorReading
		field   string
	}{
		{"zero id", models.SensorReading{ID: 0, FillLevel: ptr(10), Latitude: ptr(1), Longitude: ptr(1)}, "id"},
		{"missing fill", models.SensorReading{ID: 1, Latitude: ptr(1), Longitude: ptr(1)}, "fill_level"},
		{"negative fill", models.SensorReading{ID: 1, FillLevel: ptr(-1), Latitude: ptr(1), Longitude: ptr(1)}, "fill_level"},
		{"new bin without coordinates", models.SensorReading{ID: 1, FillLevel: ptr(10)}, "latitude/longitude"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, pub := newIngestion(t)

			_, err := svc.IngestReading(context.Background(), tc.reading)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)

			bins, _ := store.ListBins(context.Background())
			assert.Empty(t, bins)
			assert.Empty(t, pub.ofType(events.BinReading))
		})
	}
}

func TestIngestReadingDoesNotWaitForEngine(t *testing.T) {
	svc, store, _ := newIngestion(t)
	engine := NewRouteEngine(store, DefaultEngineConfig(), nil, nil)

	engine.mu.Lock()
	defer engine.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.IngestReading(context.Background(), models.SensorReading{ID: 1, Latitude: ptr(1), Longitude: ptr(1), FillLevel: ptr(50)})
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ingestion blocked on the route engine")
	}
}
