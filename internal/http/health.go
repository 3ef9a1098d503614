package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/services"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// PingFunc adapts a function to Pinger.
type PingFunc func() error

func (f PingFunc) Ping() error { return f() }

// CatalogProbe reports whether the catalog backend can be read.
func CatalogProbe(catalog *services.CatalogService) Pinger {
	return PingFunc(func() error {
		_, err := catalog.ListBooks()
		return err
	})
}

type healthCheck struct {
	name  string
	probe Pinger
}

// HealthController reports the state of every registered dependency.
// A single failing probe turns the whole status unhealthy.
type HealthController struct {
	checks  []healthCheck
	version string
}

func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

// AddCheck registers a named probe. Nil probes are ignored.
func (h *HealthController) AddCheck(name string, probe Pinger) *HealthController {
	if probe != nil {
		h.checks = append(h.checks, healthCheck{name: name, probe: probe})
	}
	return h
}

// Status handles GET /health
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string, len(h.checks))
	status := "healthy"

	for _, check := range h.checks {
		if err := check.probe.Ping(); err != nil {
			checks[check.name] = "error: " + err.Error()
			status = "unhealthy"
			continue
		}
		checks[check.name] = "ok"
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
