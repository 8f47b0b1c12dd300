package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HealthService provides health check functionality
type HealthService struct {
	mu              sync.RWMutex
	clock           interfaces.Clock
	logger          *logrus.Logger
	startTime       time.Time
	dbHealthy       bool
	dbError         error
	appliedRequests int64
	failedRequests  int64
	lastResult      string
	lastSyncAt      time.Time
	nodeName        string
	ovsEnabled      bool
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Last apply results reported in the health response
const (
	LastResultNone    = "none"
	LastResultApplied = "applied"
	LastResultFailed  = "failed"
)

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	LastCheck  string                 `json:"last_check"`
	Components map[string]interface{} `json:"components"`
	Statistics map[string]interface{} `json:"statistics"`
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, nodeName string, ovsEnabled bool, logger *logrus.Logger) *HealthService {
	return &HealthService{
		clock:      clock,
		logger:     logger,
		startTime:  clock.Now(),
		dbHealthy:  false,
		lastResult: LastResultNone,
		nodeName:   nodeName,
		ovsEnabled: ovsEnabled,
	}
}

// UpdateDBHealth updates the database health status
func (h *HealthService) UpdateDBHealth(healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dbHealthy = healthy
	h.dbError = err
}

// RecordSync adds the request results of one polling cycle.
// A cycle without requests leaves the last result untouched.
func (h *HealthService) RecordSync(applied, failed int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.appliedRequests += int64(applied)
	h.failedRequests += int64(failed)
	if applied+failed == 0 {
		return
	}

	h.lastSyncAt = h.clock.Now()
	if failed > 0 {
		h.lastResult = LastResultFailed
	} else {
		h.lastResult = LastResultApplied
	}
}

// ServeHTTP handles the HTTP health check endpoint
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := h.buildHealthResponse()

	// Set HTTP status code based on health status
	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("failed to encode health check response")
	}
}

// buildHealthResponse constructs the health check response
func (h *HealthService) buildHealthResponse() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()

	components := map[string]interface{}{
		"database": map[string]interface{}{
			"healthy": h.dbHealthy,
			"error":   h.formatError(h.dbError),
		},
		"network": map[string]interface{}{
			"node_name":   h.nodeName,
			"ovs_enabled": h.ovsEnabled,
		},
	}

	lastSync := ""
	if !h.lastSyncAt.IsZero() {
		lastSync = h.lastSyncAt.Format(time.RFC3339)
	}
	statistics := map[string]interface{}{
		"applied_requests":  h.appliedRequests,
		"failed_requests":   h.failedRequests,
		"last_apply_result": h.lastResult,
		"last_apply_time":   lastSync,
		"uptime":            h.formatUptime(now.Sub(h.startTime)),
	}

	return HealthResponse{
		Status:     h.determineOverallStatus(),
		Timestamp:  now.Format(time.RFC3339),
		LastCheck:  now.Format(time.RFC3339),
		Components: components,
		Statistics: statistics,
	}
}

// determineOverallStatus determines the overall health status
func (h *HealthService) determineOverallStatus() HealthStatus {
	if !h.dbHealthy {
		return StatusUnhealthy
	}

	// The most recent apply failing, or half of all requests failing, is degraded
	if h.lastResult == LastResultFailed {
		return StatusDegraded
	}
	if total := h.appliedRequests + h.failedRequests; total > 0 {
		if float64(h.failedRequests)/float64(total) >= 0.5 {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

// formatError formats an error to string
func (h *HealthService) formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatUptime formats uptime duration to human-readable format
func (h *HealthService) formatUptime(duration time.Duration) string {
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	} else {
		return fmt.Sprintf("%dm", minutes)
	}
}
