package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything readiness depends on: the pgx pool, the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: time.Second}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for name, p := range h.checks {
		if err := p.Ping(cctx); err != nil {
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}

	ctx.JSON(status, gin.H{"status": state, "checks": results})
}
