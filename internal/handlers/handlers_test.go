package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binroute-backend/internal/database"
	"binroute-backend/internal/models"
	"binroute-backend/internal/services"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type hubStub int

func (h hubStub) GetClientCount() int { return int(h) }

func newTestRouter(t *testing.T) (http.Handler, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	require.NoError(t, database.SeedTrucks(t.Context(), store))

	engine := services.NewRouteEngine(store, services.DefaultEngineConfig(), nil, nil)
	engine.Now = func() time.Time { return now }
	ingest := services.NewIngestionService(store, nil)
	ingest.Now = func() time.Time { return now }

	r := chi.NewRouter()
	r.Get("/health", Health(hubStub(3)))
	r.Post("/sensor-data", PostSensorData(ingest))
	r.Get("/bins", GetBins(store))
	r.Get("/optimize-route", GetOptimizedRoute(engine))
	r.Get("/impact", GetImpact(engine))
	r.Get("/truck-location/{id}", GetTruckLocation(engine))
	r.Get("/trucks", GetTrucks(store))
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostSensorData(t *testing.T) {
	h, store := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/sensor-data", `{"id":3,"name":"Gate","latitude":18.531,"longitude":73.848,"fill_level":77}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Data saved successfully"}`, rec.Body.String())

	bin, err := store.GetBin(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Gate", bin.Name)
	assert.Equal(t, 77.0, bin.FillLevel)
}

func TestPostSensorDataRejectsBadInput(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/sensor-data", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/sensor-data", `{"id":3,"latitude":1,"longitude":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "fill_level")
}

func TestGetBins(t *testing.T) {
	h, store := newTestRouter(t)
	store.PutBin(models.Bin{ID: 1, Name: "Bin 1", Latitude: 18.53, Longitude: 73.84, FillLevel: 42, LastUpdated: now.Unix()})

	rec := do(t, h, http.MethodGet, "/bins", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var bins []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bins))
	require.Len(t, bins, 1)
	assert.Equal(t, "Bin 1", bins[0]["name"])
	assert.Equal(t, 42.0, bins[0]["fill_level"])
	assert.Equal(t, "2026-03-01T12:00:00Z", bins[0]["lastUpdatedIso"])
}

func TestOptimizeRouteThenAdvance(t *testing.T) {
	h, store := newTestRouter(t)
	store.PutBin(models.Bin{ID: 1, Latitude: 18.5308, Longitude: 73.8478, FillLevel: 80})
	store.PutBin(models.Bin{ID: 2, Latitude: 18.5400, Longitude: 73.8600, FillLevel: 75})

	rec := do(t, h, http.MethodGet, "/optimize-route", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var routes map[string]models.FleetRoute
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	require.Contains(t, routes, "Truck 1")
	assert.Len(t, routes["Truck 1"].Route, 2)
	assert.Equal(t, 1.64, routes["Truck 1"].DistanceKm)
	require.NotNil(t, routes["Truck 1"].LoadAssigned)
	assert.Equal(t, 155.0, *routes["Truck 1"].LoadAssigned)

	rec = do(t, h, http.MethodGet, "/truck-location/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"latitude":18.5308,"longitude":73.8478,"status":"moving"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/trucks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trucks []models.Truck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trucks))
	require.Len(t, trucks, 2)
	assert.Equal(t, 1, trucks[0].CurrentIndex)
	assert.True(t, trucks[0].RouteLocked)
}

func TestTruckLocationUnknownAndInvalid(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/truck-location/99", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = do(t, h, http.MethodGet, "/truck-location/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImpact(t *testing.T) {
	h, store := newTestRouter(t)
	store.PutBin(models.Bin{ID: 1, Latitude: 18.5308, Longitude: 73.8478, FillLevel: 80})
	store.PutBin(models.Bin{ID: 2, Latitude: 18.5400, Longitude: 73.8600, FillLevel: 75})

	rec := do(t, h, http.MethodGet, "/impact", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.ImpactReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 20.0, report.FixedDistanceKm)
	assert.Equal(t, 1.64, report.OptimizedDistanceKm)
	assert.Equal(t, 3.67, report.FuelSavedLiters)
	assert.Equal(t, 8.44, report.CO2SavedKg)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","websocket_clients":3}`, rec.Body.String())
}
