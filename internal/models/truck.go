package models

// TruckStatus is the per-truck state machine value
type TruckStatus string

const (
	TruckStatusIdle      TruckStatus = "idle"
	TruckStatusAssigned  TruckStatus = "assigned"
	TruckStatusMoving    TruckStatus = "moving"
	TruckStatusCompleted TruckStatus = "completed"
)

// Truck represents a collection truck and its locked route (from trucks table)
type Truck struct {
	ID            int64       `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	Latitude      float64     `json:"latitude" db:"latitude"`
	Longitude     float64     `json:"longitude" db:"longitude"`
	Capacity      float64     `json:"capacity" db:"capacity"`
	Status        TruckStatus `json:"status" db:"status"`
	CurrentIndex  int         `json:"current_index" db:"current_index"`
	RouteLocked   bool        `json:"route_locked" db:"route_locked"`
	AssignedRoute RouteStops  `json:"assigned_route" db:"assigned_route"` // nil when no route is assigned
}

// Clone deep-copies the truck including its route.
func (t Truck) Clone() Truck {
	t.AssignedRoute = t.AssignedRoute.Clone()
	return t
}

// HasActiveRoute reports whether the truck holds a locked, non-empty route.
func (t *Truck) HasActiveRoute() bool {
	return t.RouteLocked && t.AssignedRoute != nil
}

// PendingStops returns the stops not yet visited.
func (t *Truck) PendingStops() RouteStops {
	if t.CurrentIndex >= len(t.AssignedRoute) {
		return nil
	}
	return t.AssignedRoute[t.CurrentIndex:]
}

// TruckPosition is returned by GET /truck-location/{id}
type TruckPosition struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Status    TruckStatus `json:"status"`
}

// FleetRoute is one truck's entry in the fleet routing response.
// LoadAssigned is only set when the route was locked by this call.
type FleetRoute struct {
	Route        RouteStops `json:"route"`
	DistanceKm   float64    `json:"distance_km"`
	LoadAssigned *float64   `json:"load_assigned,omitempty"`
}

// ImpactReport is the response for GET /impact
type ImpactReport struct {
	FixedDistanceKm     float64 `json:"fixed_distance_km"`
	OptimizedDistanceKm float64 `json:"optimized_distance_km"`
	FuelSavedLiters     float64 `json:"fuel_saved_liters"`
	CO2SavedKg          float64 `json:"co2_saved_kg"`
}
