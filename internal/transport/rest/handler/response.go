package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mockinterview/internal/scheduler"
	"mockinterview/internal/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error        string `json:"error"`
	Retryable    bool   `json:"retryable,omitempty"`
	NextQuestion string `json:"next_question,omitempty"`
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	var storageErr *service.StorageError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), NextQuestion: scheduler.ClosingPrompt})
	case errors.Is(err, service.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Retryable: true})
	case errors.As(err, &storageErr):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable, please retry", Retryable: storageErr.Retryable()})
	default:
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "request could not be completed", Retryable: true})
	}
}
