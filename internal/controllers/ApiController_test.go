package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"rucd/internal/models"
	"rucd/internal/providers"
	"rucd/internal/reminders"
	"rucd/internal/services"
	"rucd/internal/structures"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCache struct {
	data       map[string][]byte
	clearCalls int
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) Clear() {
	m.data = make(map[string][]byte)
	m.clearCalls++
}

type mockMetrics struct{}

func (m *mockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *mockMetrics) IncCacheHits()                                    {}
func (m *mockMetrics) IncCacheMisses()                                  {}
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *mockMetrics) IncRemindersScheduled(_ string)                   {}
func (m *mockMetrics) IncRemindersCancelled(_ string, _ int)            {}
func (m *mockMetrics) IncRemindersFired(_ string)                       {}
func (m *mockMetrics) IncRemindersSuppressed(_ string)                  {}
func (m *mockMetrics) SetAttentionCount(_ int)                          {}

// --- helpers ---

type controllerFixture struct {
	ac       *ApiController
	service  services.FleetServiceInterface
	cache    *mockCache
	notifier reminders.NotifierInterface
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	conf := &structures.Config{
		Reminders: structures.RemindersConfig{
			RucLeadDays:   14,
			DateLeadDays:  42,
			SweepInterval: time.Minute,
			DedupFilePath: filepath.Join(t.TempDir(), "tokens.json"),
		},
	}
	logger := &mockLogger{}
	svc := services.NewFleetService()
	cache := newMockCache()
	dedup := reminders.NewDedupStore(conf, logger)
	notifier := reminders.NewLocalNotifier(conf, logger, &mockMetrics{}, dedup)

	return &controllerFixture{
		ac:       NewApiController(conf, logger, svc, cache, notifier),
		service:  svc,
		cache:    cache,
		notifier: notifier,
	}
}

func (f *controllerFixture) addVehicle(t *testing.T, plate string, expiry int) *models.Vehicle {
	t.Helper()
	v := models.NewVehicle(plate, expiry, []models.OdometerEntry{
		models.NewOdometerEntry(time.Now().AddDate(0, 0, -10), 1000),
		models.NewOdometerEntry(time.Now(), 2000),
	})
	f.service.AddVehicle(v)
	return v
}

func postJson(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// --- AddVehicle tests ---

func TestAddVehicle_ValidPayload(t *testing.T) {
	f := newControllerFixture(t)

	payload := `{"plate":"abc123","expiryOdometer":5000,"entries":[{"date":"2026-03-02T12:00:00+13:00","value":1000}]}`
	rr := postJson(f.ac.AddVehicle, payload)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, f.service.VehicleCount())

	var resp vehicleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ABC123", resp.Plate)
	assert.Equal(t, 5000, resp.DistanceExpiry)
	require.Len(t, resp.Entries, 1)
	assert.NotEqual(t, uuid.Nil, resp.Entries[0].ID)
	assert.Equal(t, 1, f.cache.clearCalls)
}

func TestAddVehicle_InvalidJSON(t *testing.T) {
	f := newControllerFixture(t)

	rr := postJson(f.ac.AddVehicle, "not json")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, f.service.VehicleCount())
}

func TestAddVehicle_MissingPlate(t *testing.T) {
	f := newControllerFixture(t)

	rr := postJson(f.ac.AddVehicle, `{"plate":"  ","expiryOdometer":5000}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddVehicle_NegativeValues(t *testing.T) {
	f := newControllerFixture(t)

	rr := postJson(f.ac.AddVehicle, `{"plate":"ABC123","expiryOdometer":-1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJson(f.ac.AddVehicle, `{"plate":"ABC123","expiryOdometer":5000,"entries":[{"date":"2026-03-02T12:00:00+13:00","value":-5}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddVehicle_OversizedBody(t *testing.T) {
	f := newControllerFixture(t)

	big := strings.Repeat("x", maxRequestBodySize+1)
	rr := postJson(f.ac.AddVehicle, big)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- ListVehicles tests ---

func TestListVehicles_ReturnsDerivedFields(t *testing.T) {
	f := newControllerFixture(t)
	f.addVehicle(t, "ABC123", 5000)

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rr := httptest.NewRecorder()
	f.ac.ListVehicles(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []vehicleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 2000, resp[0].LatestOdometer)
	assert.Equal(t, 3000, resp[0].DistanceRemaining)
	assert.InDelta(t, 100.0, resp[0].ConsumptionRate, 1.0)
	require.NotNil(t, resp[0].ProjectedDaysRemaining)
	assert.InDelta(t, 30.0, *resp[0].ProjectedDaysRemaining, 1.0)
}

func TestListVehicles_ServesFromCache(t *testing.T) {
	f := newControllerFixture(t)
	f.cache.Set("fleet", []byte(`[{"plate":"CACHED"}]`))

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rr := httptest.NewRecorder()
	f.ac.ListVehicles(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "CACHED")
}

func TestListVehicles_PopulatesCache(t *testing.T) {
	f := newControllerFixture(t)
	f.addVehicle(t, "ABC123", 5000)

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rr := httptest.NewRecorder()
	f.ac.ListVehicles(rr, req)

	_, ok := f.cache.Get("fleet")
	assert.True(t, ok)
}

// --- GetVehicle tests ---

func TestGetVehicle(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	req := httptest.NewRequest(http.MethodGet, "/vehicle?id="+v.ID.String(), nil)
	rr := httptest.NewRecorder()
	f.ac.GetVehicle(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp vehicleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, v.ID, resp.ID)
}

func TestGetVehicle_BadID(t *testing.T) {
	f := newControllerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/vehicle?id=not-a-uuid", nil)
	rr := httptest.NewRecorder()
	f.ac.GetVehicle(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetVehicle_NotFound(t *testing.T) {
	f := newControllerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/vehicle?id="+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	f.ac.GetVehicle(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- UpdateVehicle tests ---

func TestUpdateVehicle(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	payload := fmt.Sprintf(`{"id":%q,"plate":"xyz789","expiryOdometer":6000}`, v.ID)
	rr := postJson(f.ac.UpdateVehicle, payload)

	assert.Equal(t, http.StatusOK, rr.Code)

	got, _ := f.service.Get(v.ID)
	assert.Equal(t, "XYZ789", got.Plate)
	assert.Equal(t, 6000, got.DistanceExpiry)
	assert.Equal(t, 1, f.cache.clearCalls)
}

func TestUpdateVehicle_ReplacesExpiryAndEntries(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)
	kept := v.Entries[0]

	// An edit form resubmits the whole record: a lowered threshold and a
	// corrected entry set are both accepted, echoed ids preserved.
	payload := fmt.Sprintf(
		`{"id":%q,"plate":"ABC123","expiryOdometer":4000,"entries":[{"id":%q,"date":%q,"value":1100},{"date":%q,"value":1500}]}`,
		v.ID, kept.ID, kept.Date.Format(time.RFC3339), time.Now().Format(time.RFC3339))
	rr := postJson(f.ac.UpdateVehicle, payload)

	assert.Equal(t, http.StatusOK, rr.Code)

	got, _ := f.service.Get(v.ID)
	assert.Equal(t, 4000, got.DistanceExpiry)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, kept.ID, got.Entries[0].ID)
	assert.Equal(t, 1100, got.Entries[0].Value)
	assert.NotEqual(t, uuid.Nil, got.Entries[1].ID)
	assert.Equal(t, 1500, got.Entries[1].Value)
}

func TestUpdateVehicle_NotFound(t *testing.T) {
	f := newControllerFixture(t)

	payload := fmt.Sprintf(`{"id":%q,"plate":"ABC123","expiryOdometer":5000}`, uuid.New())
	rr := postJson(f.ac.UpdateVehicle, payload)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- DeleteVehicle tests ---

func TestDeleteVehicle(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	rr := postJson(f.ac.DeleteVehicle, fmt.Sprintf(`{"id":%q}`, v.ID))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, f.service.VehicleCount())
}

func TestDeleteVehicle_NotFound(t *testing.T) {
	f := newControllerFixture(t)

	rr := postJson(f.ac.DeleteVehicle, fmt.Sprintf(`{"id":%q}`, uuid.New()))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- entry tests ---

func TestAddEntry(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	payload := fmt.Sprintf(`{"vehicleId":%q,"date":"2026-03-03T10:00:00+13:00","value":2100}`, v.ID)
	rr := postJson(f.ac.AddEntry, payload)

	assert.Equal(t, http.StatusCreated, rr.Code)

	got, _ := f.service.Get(v.ID)
	assert.Len(t, got.Entries, 3)
}

func TestAddEntry_UnknownVehicle(t *testing.T) {
	f := newControllerFixture(t)

	payload := fmt.Sprintf(`{"vehicleId":%q,"date":"2026-03-03T10:00:00+13:00","value":2100}`, uuid.New())
	rr := postJson(f.ac.AddEntry, payload)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddEntry_NegativeValue(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	payload := fmt.Sprintf(`{"vehicleId":%q,"date":"2026-03-03T10:00:00+13:00","value":-1}`, v.ID)
	rr := postJson(f.ac.AddEntry, payload)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteEntry(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)
	entryID := v.Entries[0].ID

	payload := fmt.Sprintf(`{"vehicleId":%q,"entryId":%q}`, v.ID, entryID)
	rr := postJson(f.ac.DeleteEntry, payload)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	got, _ := f.service.Get(v.ID)
	assert.Len(t, got.Entries, 1)
}

// --- ExtendDistanceExpiry tests ---

func TestExtendDistanceExpiry(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	payload := fmt.Sprintf(`{"vehicleId":%q,"newExpiry":10000}`, v.ID)
	rr := postJson(f.ac.ExtendDistanceExpiry, payload)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp vehicleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 10000, resp.DistanceExpiry)
}

func TestExtendDistanceExpiry_NonExtension(t *testing.T) {
	f := newControllerFixture(t)
	v := f.addVehicle(t, "ABC123", 5000)

	payload := fmt.Sprintf(`{"vehicleId":%q,"newExpiry":4000}`, v.ID)
	rr := postJson(f.ac.ExtendDistanceExpiry, payload)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	got, _ := f.service.Get(v.ID)
	assert.Equal(t, 5000, got.DistanceExpiry)
}

func TestExtendDistanceExpiry_UnknownVehicle(t *testing.T) {
	f := newControllerFixture(t)

	payload := fmt.Sprintf(`{"vehicleId":%q,"newExpiry":10000}`, uuid.New())
	rr := postJson(f.ac.ExtendDistanceExpiry, payload)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- attention and reminders tests ---

func TestGetAttention(t *testing.T) {
	f := newControllerFixture(t)

	// Exhausted block counts.
	f.service.AddVehicle(models.NewVehicle("AAA111", 1000, []models.OdometerEntry{
		models.NewOdometerEntry(time.Now(), 1500),
	}))

	req := httptest.NewRequest(http.MethodGet, "/attention", nil)
	rr := httptest.NewRecorder()
	f.ac.GetAttention(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count":1}`, rr.Body.String())
}

func TestGetReminders_EmptyIsArray(t *testing.T) {
	f := newControllerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/reminders", nil)
	rr := httptest.NewRecorder()
	f.ac.GetReminders(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetReminders_ListsPending(t *testing.T) {
	f := newControllerFixture(t)
	require.NoError(t, f.notifier.Schedule("ruc-expiry:a", reminders.Payload{Title: "RUC running low"}, time.Now().Add(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/reminders", nil)
	rr := httptest.NewRecorder()
	f.ac.GetReminders(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ruc-expiry:a")
}
