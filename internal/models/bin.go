package models

import "time"

// Bin is a sensor-equipped waste bin. IDs are assigned by the sensor network,
// not by the database.
type Bin struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Latitude      float64 `json:"latitude" db:"latitude"`
	Longitude     float64 `json:"longitude" db:"longitude"`
	FillLevel     float64 `json:"fill_level" db:"fill_level"`                   // Percent full, also used as weight in kg
	LastUpdated   int64   `json:"last_updated" db:"last_updated"`               // Unix timestamp
	LastCollected *int64  `json:"last_collected,omitempty" db:"last_collected"` // Unix timestamp, nil until first pickup
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FillLevel        float64 `json:"fill_level"`
	LastUpdatedIso   string  `json:"lastUpdatedIso"`
	LastCollectedIso *string `json:"lastCollectedIso,omitempty"`
}

// SensorReading is the request body for POST /sensor-data
type SensorReading struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	FillLevel *float64 `json:"fill_level"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:             b.ID,
		Name:           b.Name,
		Latitude:       b.Latitude,
		Longitude:      b.Longitude,
		FillLevel:      b.FillLevel,
		LastUpdatedIso: time.Unix(b.LastUpdated, 0).UTC().Format(time.RFC3339),
	}

	if b.LastCollected != nil {
		iso := time.Unix(*b.LastCollected, 0).UTC().Format(time.RFC3339)
		resp.LastCollectedIso = &iso
	}

	return resp
}

// Snapshot freezes the bin's location and fill into a route stop.
func (b *Bin) Snapshot() RouteStop {
	return RouteStop{
		ID:        b.ID,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		FillLevel: b.FillLevel,
	}
}
