package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"layledger/service"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail, reason string) {
	writeJSON(w, status, errorResponse{Detail: detail, Reason: reason})
}

// writeServiceError maps a service error kind onto an HTTP status
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	reason := service.ReasonOf(err)

	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), reason)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), reason)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), reason)
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Unexpected server error", "")
	}
}
