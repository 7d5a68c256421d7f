package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskgate/internal/health"
)

type HealthHandler struct {
	aggregator *health.Aggregator
	appName    string
	env        string
	startedAt  time.Time
}

type healthEntry struct {
	Status      health.Status `json:"status"`
	Description string        `json:"description,omitempty"`
	DurationMs  float64       `json:"durationMs"`
	Tags        []string      `json:"tags"`
}

type healthResponse struct {
	Status          health.Status          `json:"status"`
	TotalDurationMs float64                `json:"totalDurationMs"`
	App             string                 `json:"app"`
	Env             string                 `json:"env"`
	UptimeSec       int64                  `json:"uptimeSec"`
	Entries         map[string]healthEntry `json:"entries"`
}

func NewHealthHandler(aggregator *health.Aggregator, appName, env string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		aggregator: aggregator,
		appName:    appName,
		env:        env,
		startedAt:  startedAt,
	}
}

func (h *HealthHandler) All(c *gin.Context) {
	h.report(c, health.All)
}

func (h *HealthHandler) Live(c *gin.Context) {
	h.report(c, health.HasTag("live"))
}

func (h *HealthHandler) Ready(c *gin.Context) {
	h.report(c, health.HasTag("ready"))
}

func (h *HealthHandler) report(c *gin.Context, match health.Predicate) {
	report := h.aggregator.Run(c.Request.Context(), match)

	entries := make(map[string]healthEntry, len(report.Entries))
	for name, e := range report.Entries {
		entries[name] = healthEntry{
			Status:      e.Status,
			Description: e.Description,
			DurationMs:  milliseconds(e.Duration),
			Tags:        e.Tags,
		}
	}

	status := http.StatusOK
	if report.Status == health.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, healthResponse{
		Status:          report.Status,
		TotalDurationMs: milliseconds(report.TotalDuration),
		App:             h.appName,
		Env:             h.env,
		UptimeSec:       int64(time.Since(h.startedAt).Seconds()),
		Entries:         entries,
	})
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
