package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db          Pinger
	environment string
	now         func() time.Time
}

func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment, now: time.Now}
}

// Health serves GET /health. An unreachable database makes the service unhealthy.
func (h *HealthHandler) Health(c *gin.Context) {
	status, database, message := http.StatusOK, "connected", "Server is running successfully!"
	if err := h.db.Ping(c.Request.Context()); err != nil {
		status, database, message = http.StatusServiceUnavailable, "disconnected", "Database is unreachable"
	}

	c.JSON(status, gin.H{
		"success":     status == http.StatusOK,
		"message":     message,
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.environment,
		"database":    database,
	})
}
