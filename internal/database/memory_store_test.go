package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binroute-backend/internal/models"
)

func TestMemoryStoreUpsertOnlyRefreshesFill(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := time.Unix(1_700_000_000, 0)

	bin, created, err := store.UpsertBinReading(ctx, BinReading{
		ID: 4, Name: "Bin 4", Latitude: 18.53, Longitude: 73.84, FillLevel: 40, ReceivedAt: first,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first.Unix(), bin.LastUpdated)

	later := first.Add(time.Minute)
	bin, created, err = store.UpsertBinReading(ctx, BinReading{
		ID: 4, Name: "renamed", Latitude: 1, Longitude: 2, FillLevel: 85, ReceivedAt: later,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Bin 4", bin.Name)
	assert.Equal(t, 18.53, bin.Latitude)
	assert.Equal(t, 73.84, bin.Longitude)
	assert.Equal(t, 85.0, bin.FillLevel)
	assert.Equal(t, later.Unix(), bin.LastUpdated)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	truck, err := store.CreateTruck(ctx, models.Truck{Name: "Truck 1", Capacity: 100,
		AssignedRoute: models.RouteStops{{ID: 1, Latitude: 1, Longitude: 1, FillLevel: 10}}, RouteLocked: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), truck.ID)
	assert.Equal(t, models.TruckStatusIdle, truck.Status)

	got, err := store.GetTruck(ctx, truck.ID)
	require.NoError(t, err)
	got.AssignedRoute[0].FillLevel = 99

	again, err := store.GetTruck(ctx, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.AssignedRoute[0].FillLevel)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetBin(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetTruck(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.SaveTruck(ctx, models.Truck{ID: 9}), ErrNotFound)
}

func TestMemoryStoreSaveTruckRoutesIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	truck, err := store.CreateTruck(ctx, models.Truck{Name: "Truck 1", Capacity: 100})
	require.NoError(t, err)

	truck.RouteLocked = true
	truck.AssignedRoute = models.RouteStops{{ID: 1}}
	err = store.SaveTruckRoutes(ctx, []models.Truck{truck, {ID: 42}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	got, err := store.GetTruck(ctx, truck.ID)
	require.NoError(t, err)
	assert.False(t, got.RouteLocked)
	assert.Nil(t, got.AssignedRoute)
}

func TestMemoryStoreCollectStop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)

	store.PutBin(models.Bin{ID: 3, Name: "Bin 3", FillLevel: 90})
	truck, err := store.CreateTruck(ctx, models.Truck{Name: "Truck 1", Capacity: 100})
	require.NoError(t, err)

	truck.CurrentIndex = 1
	truck.Status = models.TruckStatusMoving
	require.NoError(t, store.CollectStop(ctx, truck, 3, now))

	bin, err := store.GetBin(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, bin.FillLevel)
	require.NotNil(t, bin.LastCollected)
	assert.Equal(t, now.Unix(), *bin.LastCollected)

	got, err := store.GetTruck(ctx, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)

	// A bin that vanished does not block the truck
	truck.CurrentIndex = 2
	require.NoError(t, store.CollectStop(ctx, truck, 77, now))
}

func TestSeedTrucksOnlyOnEmptyFleet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, SeedTrucks(ctx, store))
	require.NoError(t, SeedTrucks(ctx, store))

	trucks, err := store.ListTrucks(ctx)
	require.NoError(t, err)
	require.Len(t, trucks, 2)
	assert.Equal(t, "Truck 1", trucks[0].Name)
	assert.Equal(t, 500.0, trucks[0].Capacity)
	assert.Equal(t, 18.5350, trucks[1].Latitude)
}
