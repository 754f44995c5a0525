package handler

import (
	"net/http"

	"go.uber.org/zap"

	"mockinterview/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Guest handles POST /v1/auth/guest. Every call yields a fresh anonymous user.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authSvc.IssueToken("")
	if err != nil {
		h.logger.Error("failed to issue guest token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
