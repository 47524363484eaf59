package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController answers GET /health. The service is healthy only when the
// database answers a ping and the books schema has been initialized; every
// book operation fails otherwise.
type HealthController struct {
	store   StoreHealth
	version string
}

func NewHealthController(store StoreHealth, version string) *HealthController {
	return &HealthController{store: store, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{}
	healthy := true

	switch {
	case h.store == nil:
		checks["database"] = "not configured"
		checks["schema"] = "unknown"
		healthy = false
	default:
		if err := h.store.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
		if h.store.Initialized() {
			checks["schema"] = "ok"
		} else {
			checks["schema"] = "not initialized"
			healthy = false
		}
	}

	response := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	code := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, response)
}
