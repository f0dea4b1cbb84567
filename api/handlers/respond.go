package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/agrostats/faostat-api/api/handlers/dberror"
	"github.com/agrostats/faostat-api/api/query"
)

// ErrorResponse is the error envelope: errcode mirrors the HTTP status.
type ErrorResponse struct {
	Errcode int    `json:"errcode"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err to the error envelope. Client errors keep their
// message; store failures are logged with a correlation id and surface as a
// generic 500 so SQL details never reach the caller.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	if ce, ok := query.AsClientError(err); ok {
		writeJSON(w, ce.Errcode, ErrorResponse{Errcode: ce.Errcode, Message: ce.Message})
		return
	}

	correlationID := uuid.New().String()
	log.Error("internal error", "correlation_id", correlationID,
		"kind", dberror.Classify(err).String(), "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Errcode: http.StatusInternalServerError,
		Message: dberror.UserMessage(err) + " (ref " + correlationID + ")",
	})
}
