package rest

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// HealthHandler reports on the database and, when configured, the
// entitlement cache. A cache outage only degrades the service because
// entitlement reads fall back to the database.
type HealthHandler struct {
	db    *sql.DB
	cache redis.UniversalClient
}

func NewHealthHandler(db *sql.DB, cache redis.UniversalClient) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// pingHandler → just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler → checks dependencies
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: map[string]CheckEntry{},
	}

	if h.db != nil {
		entry := check(func() error { return h.db.PingContext(ctx) })
		resp.Components["postgres"] = entry
		if entry.Status != HealthHealthy {
			resp.Status = HealthUnhealthy
		}
	}

	if h.cache != nil {
		entry := check(func() error { return h.cache.Ping(ctx).Err() })
		resp.Components["redis"] = entry
		if entry.Status != HealthHealthy && resp.Status == HealthHealthy {
			resp.Status = HealthDegraded
		}
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func check(ping func() error) CheckEntry {
	start := time.Now()
	err := ping()
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
