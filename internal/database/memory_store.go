package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"binroute-backend/internal/models"
)

// MemoryStore keeps bins and trucks in id-keyed maps. Used when no
// DATABASE_URL is set and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	bins        map[int64]models.Bin   // id -> bin
	trucks      map[int64]models.Truck // id -> truck
	nextTruckID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bins:        map[int64]models.Bin{},
		trucks:      map[int64]models.Truck{},
		nextTruckID: 1,
	}
}

func (m *MemoryStore) ListBins(ctx context.Context) ([]models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bins := make([]models.Bin, 0, len(m.bins))
	for _, b := range m.bins {
		bins = append(bins, copyBin(b))
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].ID < bins[j].ID })
	return bins, nil
}

func (m *MemoryStore) GetBin(ctx context.Context, id int64) (models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	return copyBin(b), nil
}

func (m *MemoryStore) UpsertBinReading(ctx context.Context, reading BinReading) (models.Bin, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, exists := m.bins[reading.ID]
	if exists {
		b.FillLevel = reading.FillLevel
		b.LastUpdated = reading.ReceivedAt.Unix()
	} else {
		b = models.Bin{
			ID:          reading.ID,
			Name:        reading.Name,
			Latitude:    reading.Latitude,
			Longitude:   reading.Longitude,
			FillLevel:   reading.FillLevel,
			LastUpdated: reading.ReceivedAt.Unix(),
		}
	}
	m.bins[reading.ID] = b
	return copyBin(b), !exists, nil
}

func (m *MemoryStore) ListTrucks(ctx context.Context) ([]models.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trucks := make([]models.Truck, 0, len(m.trucks))
	for _, t := range m.trucks {
		trucks = append(trucks, t.Clone())
	}
	sort.Slice(trucks, func(i, j int) bool { return trucks[i].ID < trucks[j].ID })
	return trucks, nil
}

func (m *MemoryStore) GetTruck(ctx context.Context, id int64) (models.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trucks[id]
	if !ok {
		return models.Truck{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryStore) CreateTruck(ctx context.Context, truck models.Truck) (models.Truck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if truck.ID == 0 {
		truck.ID = m.nextTruckID
	}
	if _, dup := m.trucks[truck.ID]; dup {
		return models.Truck{}, fmt.Errorf("create truck: id %d already exists", truck.ID)
	}
	if truck.ID >= m.nextTruckID {
		m.nextTruckID = truck.ID + 1
	}
	if truck.Status == "" {
		truck.Status = models.TruckStatusIdle
	}
	m.trucks[truck.ID] = truck.Clone()
	return truck.Clone(), nil
}

func (m *MemoryStore) SaveTruck(ctx context.Context, truck models.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trucks[truck.ID]; !ok {
		return ErrNotFound
	}
	m.trucks[truck.ID] = truck.Clone()
	return nil
}

func (m *MemoryStore) SaveTruckRoutes(ctx context.Context, trucks []models.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate everything first so a bad id leaves the store untouched.
	for _, t := range trucks {
		if _, ok := m.trucks[t.ID]; !ok {
			return fmt.Errorf("save truck routes: truck %d: %w", t.ID, ErrNotFound)
		}
	}
	for _, t := range trucks {
		m.trucks[t.ID] = t.Clone()
	}
	return nil
}

func (m *MemoryStore) CollectStop(ctx context.Context, truck models.Truck, binID int64, collectedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trucks[truck.ID]; !ok {
		return fmt.Errorf("collect stop: truck %d: %w", truck.ID, ErrNotFound)
	}
	m.trucks[truck.ID] = truck.Clone()

	if b, ok := m.bins[binID]; ok {
		ts := collectedAt.Unix()
		b.FillLevel = 0
		b.LastCollected = &ts
		m.bins[binID] = b
	}
	return nil
}

func copyBin(b models.Bin) models.Bin {
	if b.LastCollected != nil {
		ts := *b.LastCollected
		b.LastCollected = &ts
	}
	return b
}

// PutBin stores a bin as given, replacing any existing one. Used to load
// fixtures with collection history.
func (m *MemoryStore) PutBin(b models.Bin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bins[b.ID] = copyBin(b)
}
