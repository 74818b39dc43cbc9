package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"binroute-backend/internal/metrics"
	"binroute-backend/internal/models"
)

// ComputeFleetRoutes returns every truck's route keyed by truck name. Trucks
// that already hold a locked route get it back unchanged; the others receive
// a fresh batch from the eligible pool, which is then locked.
func (e *RouteEngine) ComputeFleetRoutes(ctx context.Context) (map[string]models.FleetRoute, error) {
	e.mu.Lock()
	routes, locked, err := e.computeFleetRoutesLocked(ctx)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.announceLocked(ctx, locked)
	return routes, nil
}

// isEligible reports whether a bin should be collected this cycle.
func (e *RouteEngine) isEligible(b models.Bin, now time.Time) bool {
	if b.FillLevel > e.cfg.FillThreshold {
		return true
	}
	if b.LastCollected == nil {
		return true
	}
	return now.Sub(time.Unix(*b.LastCollected, 0)) > e.cfg.FairnessWindow
}

// computeFleetRoutesLocked must be called with e.mu held.
func (e *RouteEngine) computeFleetRoutesLocked(ctx context.Context) (map[string]models.FleetRoute, []lockedRoute, error) {
	bins, err := e.store.ListBins(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("compute fleet routes: list bins: %w", err)
	}
	trucks, err := e.store.ListTrucks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("compute fleet routes: list trucks: %w", err)
	}

	now := e.Now()
	eligible := make([]models.Bin, 0, len(bins))
	for _, b := range bins {
		if e.isEligible(b, now) {
			eligible = append(eligible, b)
		}
	}
	metrics.EligibleBins.Set(float64(len(eligible)))

	routes := make(map[string]models.FleetRoute)
	if len(eligible) == 0 || len(trucks) == 0 {
		return routes, nil, nil
	}

	// Highest fill first; equal fills keep storage order
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].FillLevel > eligible[j].FillLevel
	})

	// Bins still ahead of a locked truck are spoken for
	reserved := make(map[int64]bool)
	for i := range trucks {
		if trucks[i].HasActiveRoute() {
			for _, stop := range trucks[i].PendingStops() {
				reserved[stop.ID] = true
			}
		}
	}
	remaining := make([]models.Bin, 0, len(eligible))
	for _, b := range eligible {
		if !reserved[b.ID] {
			remaining = append(remaining, b)
		}
	}

	var locked []lockedRoute
	var toSave []models.Truck

	for _, truck := range trucks {
		if truck.HasActiveRoute() {
			routes[truck.Name] = models.FleetRoute{
				Route:      truck.AssignedRoute,
				DistanceKm: RouteDistance(truck.AssignedRoute),
			}
			continue
		}

		// First fit over the shared pool
		var batch []models.Bin
		load := 0.0
		kept := remaining[:0]
		for _, b := range remaining {
			if load+b.FillLevel <= truck.Capacity {
				batch = append(batch, b)
				load += b.FillLevel
			} else {
				kept = append(kept, b)
			}
		}
		remaining = kept

		if len(batch) == 0 {
			// Nothing fits. The truck stays unlocked and is retried next call.
			noLoad := 0.0
			routes[truck.Name] = models.FleetRoute{Route: models.RouteStops{}, DistanceKm: 0, LoadAssigned: &noLoad}
			continue
		}

		route := BuildTour(batch)
		distance := RouteDistance(route)

		truck.AssignedRoute = route
		truck.RouteLocked = true
		truck.CurrentIndex = 0
		truck.Status = models.TruckStatusAssigned
		toSave = append(toSave, truck)

		assigned := load
		fr := models.FleetRoute{Route: route, DistanceKm: distance, LoadAssigned: &assigned}
		routes[truck.Name] = fr
		locked = append(locked, lockedRoute{truck: truck, route: fr, seq: e.nextSeqLocked()})
	}

	if len(toSave) > 0 {
		if err := e.store.SaveTruckRoutes(ctx, toSave); err != nil {
			return nil, nil, fmt.Errorf("compute fleet routes: lock routes: %w", err)
		}
		log.Printf("🚚 Locked %d new route(s), %d eligible bin(s) left unassigned", len(toSave), len(remaining))
	}

	return routes, locked, nil
}
