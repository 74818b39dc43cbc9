package services

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"binroute-backend/internal/database"
	"binroute-backend/internal/events"
	"binroute-backend/internal/metrics"
	"binroute-backend/internal/models"
)

// EngineConfig holds the eligibility thresholds.
type EngineConfig struct {
	// A bin strictly above this fill level is always eligible
	FillThreshold float64
	// A bin not collected for strictly longer than this is eligible at any fill
	FairnessWindow time.Duration
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{FillThreshold: 70, FairnessWindow: 6 * time.Hour}
}

// Notifier pushes route lifecycle notices to the truck's crew.
type Notifier interface {
	RouteAssigned(ctx context.Context, truck models.Truck, distanceKm float64) error
	RouteCompleted(ctx context.Context, truck models.Truck) error
}

// NopNotifier is used when push notifications are not configured.
type NopNotifier struct{}

func (NopNotifier) RouteAssigned(context.Context, models.Truck, float64) error { return nil }
func (NopNotifier) RouteCompleted(context.Context, models.Truck) error        { return nil }

// RouteEngine owns every route-mutating operation. Fleet assignment and
// truck advance are serialized on one mutex so a bin can never land on two
// routes and current_index updates are never lost.
type RouteEngine struct {
	store     database.Store
	publisher events.Publisher
	notifier  Notifier
	cfg       EngineConfig

	// Now is the clock used for eligibility and collection timestamps
	Now func() time.Time

	mu sync.Mutex
	// Last event sequence number, guarded by mu
	seq uint64
}

func NewRouteEngine(store database.Store, cfg EngineConfig, publisher events.Publisher, notifier Notifier) *RouteEngine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RouteEngine{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		Now:       time.Now,
	}
}

// lockedRoute is a route that was just locked onto a truck and still needs
// to be announced.
type lockedRoute struct {
	truck models.Truck
	route models.FleetRoute
	seq   uint64
}

// nextSeqLocked must be called with e.mu held. Events are published after
// the mutex is released, so concurrent callers may deliver them out of
// order; seq gives dashboards the commit order.
func (e *RouteEngine) nextSeqLocked() uint64 {
	e.seq++
	return e.seq
}

// announceLocked runs outside the engine mutex. Failures are logged only,
// the routes are already committed.
func (e *RouteEngine) announceLocked(ctx context.Context, locked []lockedRoute) {
	for _, l := range locked {
		truckLabel := strconv.FormatInt(l.truck.ID, 10)
		metrics.RoutesLocked.WithLabelValues(truckLabel).Inc()
		metrics.RouteDistance.Observe(l.route.DistanceKm)

		e.publisher.Publish(ctx, events.New(events.RoutesAssigned, map[string]interface{}{
			"truck_id":      l.truck.ID,
			"truck_name":    l.truck.Name,
			"route":         l.route.Route,
			"distance_km":   l.route.DistanceKm,
			"load_assigned": l.route.LoadAssigned,
			"seq":           l.seq,
		}))

		if err := e.notifier.RouteAssigned(ctx, l.truck, l.route.DistanceKm); err != nil {
			log.Printf("⚠️  Route assigned notification failed for truck %d: %v", l.truck.ID, err)
		}
	}
}
