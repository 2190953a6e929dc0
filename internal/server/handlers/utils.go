// Package handlers implements the docsite HTTP API on top of the content
// service.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// writeJSON sends v with status 200. The body is encoded before any header
// is written, so an encoding error can still become an error response.
// ?pretty=1 indents the output.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	var (
		body []byte
		err  error
	)
	if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
		body, err = json.MarshalIndent(v, "", "  ")
	} else {
		body, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, werr := w.Write(append(body, '\n')); werr != nil {
		slog.Debug("Client went away before response was written", logfields.Path(r.URL.Path), logfields.Error(werr))
	}
	return nil
}
