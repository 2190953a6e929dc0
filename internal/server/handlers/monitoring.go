package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// Runtime is what the health endpoint reports on.
type Runtime interface {
	StartTime() time.Time
	Locales() int
	CachedDocuments() int
	SearchEnabled() bool
}

// MonitoringHandlers serves health information.
type MonitoringHandlers struct {
	runtime      Runtime
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers.
func NewMonitoringHandlers(runtime Runtime) *MonitoringHandlers {
	return &MonitoringHandlers{
		runtime:      runtime,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles GET /healthz.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:          "healthy",
		Timestamp:       time.Now().UTC(),
		Version:         version.Version,
		Uptime:          time.Since(h.runtime.StartTime()).Seconds(),
		Locales:         h.runtime.Locales(),
		CachedDocuments: h.runtime.CachedDocuments(),
		Search:          h.runtime.SearchEnabled(),
	}
	if err := writeJSON(w, r, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
