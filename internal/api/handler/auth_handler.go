package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	// A malformed payload is an authentication failure like any other.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		common.RespondWithDomainError(w, common.ErrInvalidCredentials)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(),
		middleware.PrincipalFromContext(r.Context()),
		middleware.TokenFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
