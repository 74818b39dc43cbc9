package simulator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"binroute-backend/internal/models"
)

// Ingester is the sensor ingestion path the simulator writes through.
type Ingester interface {
	IngestReading(ctx context.Context, reading models.SensorReading) (models.Bin, error)
}

type Config struct {
	Interval time.Duration
	// Bin ids FirstBinID..LastBinID inclusive are simulated
	FirstBinID int64
	LastBinID  int64
	BaseLat    float64
	BaseLon    float64
	// Max coordinate offset in degrees around the base point
	Spread  float64
	MinFill int
	MaxFill int
}

func DefaultConfig() Config {
	return Config{
		Interval:   5 * time.Second,
		FirstBinID: 2,
		LastBinID:  20,
		BaseLat:    18.5308,
		BaseLon:    73.8478,
		Spread:     0.01,
		MinFill:    10,
		MaxFill:    100,
	}
}

// Simulator fabricates sensor readings on a fixed interval until stopped.
type Simulator struct {
	cfg    Config
	ingest Ingester
	rng    *rand.Rand

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, ingest Ingester, seed int64) *Simulator {
	return &Simulator{
		cfg:    cfg,
		ingest: ingest,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Start launches the loop in the background. A second Start while running
// is a no-op. The loop stops when ctx is cancelled or Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	log.Printf("🛰️  Sensor simulator started (bins %d-%d every %s)", s.cfg.FirstBinID, s.cfg.LastBinID, s.cfg.Interval)
	go s.run(ctx, s.done)
}

// Stop cancels the loop and waits for the in-flight round to finish.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("🛑 Sensor simulator stopped")
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick produces one reading per simulated bin. Failed readings are logged
// and skipped.
func (s *Simulator) Tick(ctx context.Context) int {
	ok := 0
	for id := s.cfg.FirstBinID; id <= s.cfg.LastBinID; id++ {
		if ctx.Err() != nil {
			return ok
		}

		reading := s.reading(id)
		if _, err := s.ingest.IngestReading(ctx, reading); err != nil {
			log.Printf("⚠️  Simulator reading for bin %d failed: %v", id, err)
			continue
		}
		ok++
	}
	return ok
}

func (s *Simulator) reading(id int64) models.SensorReading {
	lat := s.cfg.BaseLat + (s.rng.Float64()*2-1)*s.cfg.Spread
	lon := s.cfg.BaseLon + (s.rng.Float64()*2-1)*s.cfg.Spread
	fill := float64(s.cfg.MinFill + s.rng.Intn(s.cfg.MaxFill-s.cfg.MinFill+1))

	return models.SensorReading{
		ID:        id,
		Name:      fmt.Sprintf("Virtual Bin %d", id),
		Latitude:  &lat,
		Longitude: &lon,
		FillLevel: &fill,
	}
}
