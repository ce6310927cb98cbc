package controllers

import (
	"fmt"
	"net/http"
	"rucd/internal/reminders"
	"rucd/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.FleetServiceInterface
	notifier  reminders.NotifierInterface
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Vehicles         int     `json:"vehicles"`
	PendingReminders int     `json:"pending_reminders"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:           "ok",
		Uptime:           formatDuration(uptime),
		UptimeSeconds:    uptime.Seconds(),
		Vehicles:         hc.service.VehicleCount(),
		PendingReminders: len(hc.notifier.Pending()),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.FleetServiceInterface, notifier reminders.NotifierInterface) *HealthController {
	return &HealthController{
		service:   service,
		notifier:  notifier,
		startTime: time.Now(),
	}
}
