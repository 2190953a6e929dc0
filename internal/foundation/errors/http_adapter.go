package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter writes classified errors as JSON responses.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter returns an adapter logging to logger, or to
// slog.Default when it is nil.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the JSON body of every API error.
type HTTPErrorResponse struct {
	Error    string         `json:"error"`
	Code     string         `json:"code,omitempty"`
	Location string         `json:"location,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

var statusByCategory = map[ErrorCategory]int{
	CategoryValidation: http.StatusBadRequest,
	CategoryNotFound:   http.StatusNotFound,
	CategoryDocs:       http.StatusUnprocessableEntity,
	CategoryRender:     http.StatusUnprocessableEntity,
	CategorySearch:     http.StatusServiceUnavailable,
	CategoryRuntime:    http.StatusServiceUnavailable,
}

// StatusCodeFor maps an error to its HTTP status. Unclassified errors and
// unmapped categories are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCategory[c.category]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteErrorResponse writes err as JSON and logs it. Not-found is logged at
// debug level; server-side failures at error level.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	body, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	level := slog.LevelWarn
	switch {
	case status == http.StatusNotFound:
		level = slog.LevelDebug
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	}
	a.logger.Log(r.Context(), level, err.Error(), slog.String("path", r.URL.Path), slog.Int("status", status))
}

// FormatErrorResponse builds the response body for err. Internal errors do
// not expose their message.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: "internal error", Code: string(CategoryInternal)}
	}
	if c.category == CategoryInternal {
		return HTTPErrorResponse{Error: "internal error", Code: string(CategoryInternal)}
	}
	resp := HTTPErrorResponse{Error: c.message, Code: string(c.category), Location: c.Location()}
	if len(c.context) > 0 {
		resp.Details = map[string]any(c.context)
	}
	return resp
}
