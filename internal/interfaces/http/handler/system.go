package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves health probes and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which case
// readiness only reflects that the process is serving.
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"commerce-core"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse is the body of the health probes
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database,omitempty" example:"up"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health godoc
// @ID           health
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @ID           ready
// @Summary      Readiness probe
// @Description  Fails with 503 while the database is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} ErrorResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Database unavailable")
			return
		}
		resp.Database = "up"
	}
	c.JSON(http.StatusOK, resp)
}
