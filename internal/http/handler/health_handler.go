package handler

import (
	"net/http"

	"github.com/m3dev4/essenz/internal/health"
	"github.com/m3dev4/essenz/internal/http/response"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Live answers as long as the process can serve requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, "", map[string]string{"status": "up"})
}

// Ready probes every dependency and reports 503 when any is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())
	status := http.StatusOK
	if report.Status == health.StatusDown {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, "", report)
}
