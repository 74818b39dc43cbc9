package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteStopsValueNilIsNull(t *testing.T) {
	v, err := RouteStops(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var r RouteStops = RouteStops{{ID: 1}}
	require.NoError(t, r.Scan(nil))
	assert.Nil(t, r)
}

func TestRouteStopsScanFromJSONB(t *testing.T) {
	var r RouteStops
	require.NoError(t, r.Scan([]byte(`[{"id":4,"latitude":18.53,"longitude":73.84,"fill_level":88}]`)))
	assert.Equal(t, RouteStops{{ID: 4, Latitude: 18.53, Longitude: 73.84, FillLevel: 88}}, r)

	assert.Error(t, r.Scan(42))
	assert.Error(t, r.Scan("not json"))
}

func TestTruckPendingStops(t *testing.T) {
	truck := Truck{RouteLocked: true, AssignedRoute: RouteStops{{ID: 1}, {ID: 2}, {ID: 3}}, CurrentIndex: 1}
	assert.True(t, truck.HasActiveRoute())
	assert.Equal(t, RouteStops{{ID: 2}, {ID: 3}}, truck.PendingStops())

	truck.CurrentIndex = 3
	assert.Empty(t, truck.PendingStops())

	clone := truck.Clone()
	clone.AssignedRoute[0].ID = 99
	assert.Equal(t, int64(1), truck.AssignedRoute[0].ID)
}
