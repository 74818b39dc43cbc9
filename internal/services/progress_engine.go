package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"binroute-backend/internal/database"
	"binroute-backend/internal/events"
	"binroute-backend/internal/metrics"
	"binroute-backend/internal/models"
)

// AdvanceTruck moves a truck exactly one stop along its locked route. A truck
// without a locked route triggers fleet assignment first. Returns nil when
// the truck does not exist or still has no route.
func (e *RouteEngine) AdvanceTruck(ctx context.Context, truckID int64) (*models.TruckPosition, error) {
	e.mu.Lock()
	pos, truck, locked, err := e.advanceLocked(ctx, truckID)
	var seq uint64
	if err == nil && pos != nil {
		seq = e.nextSeqLocked()
	}
	e.mu.Unlock()

	// Routes locked on the way are committed even if the advance itself failed
	e.announceLocked(ctx, locked)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, nil
	}

	switch pos.Status {
	case models.TruckStatusCompleted:
		log.Printf("🏁 Truck %d completed its route", truck.ID)
		e.publisher.Publish(ctx, events.New(events.RouteCompleted, map[string]interface{}{
			"truck_id":   truck.ID,
			"truck_name": truck.Name,
			"seq":        seq,
		}))
		if err := e.notifier.RouteCompleted(ctx, truck); err != nil {
			log.Printf("⚠️  Route completed notification failed for truck %d: %v", truck.ID, err)
		}
	default:
		metrics.StopsServiced.WithLabelValues(strconv.FormatInt(truck.ID, 10)).Inc()
		e.publisher.Publish(ctx, events.New(events.TruckPositionUpdate, map[string]interface{}{
			"truck_id":      truck.ID,
			"truck_name":    truck.Name,
			"latitude":      pos.Latitude,
			"longitude":     pos.Longitude,
			"status":        pos.Status,
			"current_index": truck.CurrentIndex,
			"bin_id":        truck.AssignedRoute[truck.CurrentIndex-1].ID,
			"seq":           seq,
		}))
	}

	return pos, nil
}

func (e *RouteEngine) advanceLocked(ctx context.Context, truckID int64) (*models.TruckPosition, models.Truck, []lockedRoute, error) {
	truck, err := e.store.GetTruck(ctx, truckID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.Truck{}, nil, nil
	}
	if err != nil {
		return nil, models.Truck{}, nil, fmt.Errorf("advance truck %d: %w", truckID, err)
	}

	var locked []lockedRoute
	if !truck.RouteLocked {
		if _, locked, err = e.computeFleetRoutesLocked(ctx); err != nil {
			return nil, models.Truck{}, nil, fmt.Errorf("advance truck %d: %w", truckID, err)
		}
		if truck, err = e.store.GetTruck(ctx, truckID); err != nil {
			return nil, models.Truck{}, locked, fmt.Errorf("advance truck %d: reload: %w", truckID, err)
		}
	}

	if len(truck.AssignedRoute) == 0 {
		return nil, truck, locked, nil
	}

	if truck.CurrentIndex >= len(truck.AssignedRoute) {
		truck.Status = models.TruckStatusCompleted
		truck.RouteLocked = false
		truck.AssignedRoute = nil
		truck.CurrentIndex = 0
		if err := e.store.SaveTruck(ctx, truck); err != nil {
			return nil, models.Truck{}, locked, fmt.Errorf("advance truck %d: complete route: %w", truckID, err)
		}
		return &models.TruckPosition{
			Latitude:  truck.Latitude,
			Longitude: truck.Longitude,
			Status:    truck.Status,
		}, truck, locked, nil
	}

	stop := truck.AssignedRoute[truck.CurrentIndex]
	truck.Latitude = stop.Latitude
	truck.Longitude = stop.Longitude
	truck.Status = models.TruckStatusMoving
	truck.CurrentIndex++

	if err := e.store.CollectStop(ctx, truck, stop.ID, e.Now()); err != nil {
		return nil, models.Truck{}, locked, fmt.Errorf("advance truck %d: collect bin %d: %w", truckID, stop.ID, err)
	}

	return &models.TruckPosition{
		Latitude:  truck.Latitude,
		Longitude: truck.Longitude,
		Status:    truck.Status,
	}, truck, locked, nil
}
