package controllers

import (
	"net/http"
	"rucd/internal/models"
	"rucd/internal/providers"
	"rucd/internal/reminders"
	"rucd/internal/services"
	"rucd/internal/structures"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	config   *structures.Config
	logger   providers.Logger
	service  services.FleetServiceInterface
	cache    providers.CacheProviderInterface
	notifier reminders.NotifierInterface
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.FleetServiceInterface, cache providers.CacheProviderInterface, notifier reminders.NotifierInterface) *ApiController {
	return &ApiController{
		config:   conf,
		logger:   logger,
		service:  service,
		cache:    cache,
		notifier: notifier,
	}
}

// vehicleResponse is a vehicle plus its derived projection and compliance
// fields, so clients never reimplement the forecasting math.
type vehicleResponse struct {
	ID                             uuid.UUID              `json:"id"`
	Plate                          string                 `json:"plate"`
	DistanceExpiry                 int                    `json:"expiryOdometer"`
	Entries                        []models.OdometerEntry `json:"entries"`
	PhotoRef                       string                 `json:"imageName,omitempty"`
	WOFExpiry                      *time.Time             `json:"wofExpiryDate,omitempty"`
	RegistrationExpiry             *time.Time             `json:"registrationExpiryDate,omitempty"`
	LatestOdometer                 int                    `json:"latestOdometer"`
	DistanceRemaining              int                    `json:"distanceRemaining"`
	ConsumptionRate                float64                `json:"consumptionRate"`
	ProjectedDaysRemaining         *float64               `json:"projectedDaysRemaining,omitempty"`
	ProjectedExhaustionDate        *time.Time             `json:"projectedExhaustionDate,omitempty"`
	WOFDueSoon                     bool                   `json:"wofDueSoon"`
	RegistrationDueSoon            bool                   `json:"registrationDueSoon"`
	WOFDueWithinTwoMonths          bool                   `json:"wofDueWithinTwoMonths"`
	RegistrationDueWithinTwoMonths bool                   `json:"registrationDueWithinTwoMonths"`
}

func toVehicleResponse(v *models.Vehicle, now time.Time) vehicleResponse {
	resp := vehicleResponse{
		ID:                             v.ID,
		Plate:                          v.Plate,
		DistanceExpiry:                 v.DistanceExpiry,
		Entries:                        v.Entries,
		PhotoRef:                       v.PhotoRef,
		WOFExpiry:                      v.WOFExpiry,
		RegistrationExpiry:             v.RegistrationExpiry,
		LatestOdometer:                 v.LatestOdometer(),
		DistanceRemaining:              v.DistanceRemaining(),
		ConsumptionRate:                v.ConsumptionRate(now),
		WOFDueSoon:                     v.WOFDueSoon(now),
		RegistrationDueSoon:            v.RegistrationDueSoon(now),
		WOFDueWithinTwoMonths:          v.WOFDueWithinTwoMonths(now),
		RegistrationDueWithinTwoMonths: v.RegistrationDueWithinTwoMonths(now),
	}
	if days, ok := v.ProjectedDaysRemaining(now); ok {
		resp.ProjectedDaysRemaining = &days
	}
	if date, ok := v.ProjectedExhaustionDate(now); ok {
		resp.ProjectedExhaustionDate = &date
	}
	return resp
}

type entryInput struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

type addVehicleRequest struct {
	Plate              string       `json:"plate"`
	DistanceExpiry     int          `json:"expiryOdometer"`
	Entries            []entryInput `json:"entries"`
	PhotoRef           string       `json:"imageName"`
	WOFExpiry          *time.Time   `json:"wofExpiryDate"`
	RegistrationExpiry *time.Time   `json:"registrationExpiryDate"`
}

type updateVehicleRequest struct {
	ID uuid.UUID `json:"id"`
	addVehicleRequest
}

type idRequest struct {
	ID uuid.UUID `json:"id"`
}

type addEntryRequest struct {
	VehicleID uuid.UUID `json:"vehicleId"`
	Date      time.Time `json:"date"`
	Value     int       `json:"value"`
}

type deleteEntryRequest struct {
	VehicleID uuid.UUID `json:"vehicleId"`
	EntryID   uuid.UUID `json:"entryId"`
}

type extendExpiryRequest struct {
	VehicleID uuid.UUID `json:"vehicleId"`
	NewExpiry int       `json:"newExpiry"`
}

func (ac *ApiController) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func (ac *ApiController) writeJson(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// AddVehicle registers a vehicle. The plate is required and stored
// uppercased; entries arrive without ids and get fresh ones.
func (ac *ApiController) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var payload addVehicleRequest
	if !ac.decodeBody(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Plate) == "" || payload.DistanceExpiry < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	entries := make([]models.OdometerEntry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		if e.Value < 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		entries = append(entries, models.NewOdometerEntry(e.Date, e.Value))
	}

	v := models.NewVehicle(strings.TrimSpace(payload.Plate), payload.DistanceExpiry, entries)
	v.PhotoRef = payload.PhotoRef
	v.WOFExpiry = payload.WOFExpiry
	v.RegistrationExpiry = payload.RegistrationExpiry

	ac.service.AddVehicle(v)
	ac.cache.Clear()
	ac.writeJson(w, http.StatusCreated, toVehicleResponse(v, time.Now()))
}

func (ac *ApiController) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "fleet", func() (any, error) {
		now := time.Now()
		vehicles := ac.service.List()
		out := make([]vehicleResponse, 0, len(vehicles))
		for _, v := range vehicles {
			out = append(out, toVehicleResponse(v, now))
		}
		return out, nil
	})
}

func (ac *ApiController) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	v, ok := ac.service.Get(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.writeJson(w, http.StatusOK, toVehicleResponse(v, time.Now()))
}

// UpdateVehicle replaces a vehicle wholesale. Entry ids are preserved when
// the client echoes them back; entries without an id get fresh ones.
func (ac *ApiController) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		ID                 uuid.UUID              `json:"id"`
		Plate              string                 `json:"plate"`
		DistanceExpiry     int                    `json:"expiryOdometer"`
		Entries            []models.OdometerEntry `json:"entries"`
		PhotoRef           string                 `json:"imageName"`
		WOFExpiry          *time.Time             `json:"wofExpiryDate"`
		RegistrationExpiry *time.Time             `json:"registrationExpiryDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if payload.ID == uuid.Nil || strings.TrimSpace(payload.Plate) == "" || payload.DistanceExpiry < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	for i := range payload.Entries {
		if payload.Entries[i].Value < 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if payload.Entries[i].ID == uuid.Nil {
			payload.Entries[i].ID = uuid.New()
		}
	}

	v := &models.Vehicle{
		ID:                 payload.ID,
		Plate:              strings.ToUpper(strings.TrimSpace(payload.Plate)),
		DistanceExpiry:     payload.DistanceExpiry,
		Entries:            payload.Entries,
		PhotoRef:           payload.PhotoRef,
		WOFExpiry:          payload.WOFExpiry,
		RegistrationExpiry: payload.RegistrationExpiry,
	}
	if !ac.service.UpdateVehicle(v) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.cache.Clear()
	ac.writeJson(w, http.StatusOK, toVehicleResponse(v, time.Now()))
}

func (ac *ApiController) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	var payload idRequest
	if !ac.decodeBody(w, r, &payload) {
		return
	}
	if !ac.service.DeleteVehicle(payload.ID) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) AddEntry(w http.ResponseWriter, r *http.Request) {
	var payload addEntryRequest
	if !ac.decodeBody(w, r, &payload) {
		return
	}
	if payload.Value < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	entry := models.NewOdometerEntry(payload.Date, payload.Value)
	if !ac.service.AddEntry(payload.VehicleID, entry) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.cache.Clear()
	ac.writeJson(w, http.StatusCreated, entry)
}

func (ac *ApiController) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	var payload deleteEntryRequest
	if !ac.decodeBody(w, r, &payload) {
		return
	}
	if !ac.service.DeleteEntry(payload.VehicleID, payload.EntryID) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// ExtendDistanceExpiry raises a vehicle's RUC block after a purchase. A
// non-extending value is a client error, not a silent no-op.
func (ac *ApiController) ExtendDistanceExpiry(w http.ResponseWriter, r *http.Request) {
	var payload extendExpiryRequest
	if !ac.decodeBody(w, r, &payload) {
		return
	}
	if err := ac.service.ExtendDistanceExpiry(payload.VehicleID, payload.NewExpiry); err != nil {
		if _, ok := ac.service.Get(payload.VehicleID); !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Warnf(providers.TypePost, "Rejected expiry extension: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.cache.Clear()

	v, _ := ac.service.Get(payload.VehicleID)
	ac.writeJson(w, http.StatusOK, toVehicleResponse(v, time.Now()))
}

func (ac *ApiController) GetAttention(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	count := reminders.AttentionCount(ac.service.List(), now, ac.config.Reminders.RucLeadDays, ac.config.Reminders.DateLeadDays)
	ac.writeJson(w, http.StatusOK, map[string]int{"count": count})
}

// GetReminders exposes the pending reminder set for inspection.
func (ac *ApiController) GetReminders(w http.ResponseWriter, r *http.Request) {
	pending := ac.notifier.Pending()
	if pending == nil {
		pending = []reminders.PendingReminder{}
	}
	ac.writeJson(w, http.StatusOK, pending)
}
