package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RouteStop is a frozen copy of a bin taken when a route is locked.
// It carries the bin id only, never a live Bin.
type RouteStop struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	FillLevel float64 `json:"fill_level"`
}

// RouteStops is stored as JSONB. A nil slice maps to SQL NULL.
type RouteStops []RouteStop

// Value implements driver.Valuer
func (r RouteStops) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal([]RouteStop(r))
	if err != nil {
		return nil, fmt.Errorf("marshal route stops: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (r *RouteStops) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan route stops: unsupported type %T", src)
	}

	var stops []RouteStop
	if err := json.Unmarshal(data, &stops); err != nil {
		return fmt.Errorf("scan route stops: %w", err)
	}
	*r = stops
	return nil
}

// Clone returns an independent copy so callers can't alias stored routes.
func (r RouteStops) Clone() RouteStops {
	if r == nil {
		return nil
	}
	out := make(RouteStops, len(r))
	copy(out, r)
	return out
}

// TotalLoad sums the snapshot fill levels.
func (r RouteStops) TotalLoad() float64 {
	total := 0.0
	for _, s := range r {
		total += s.FillLevel
	}
	return total
}
