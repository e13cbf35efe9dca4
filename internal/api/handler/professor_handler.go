package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ProfessorHandler struct {
	professorService *service.ProfessorService
}

func NewProfessorHandler(professorService *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professorService: professorService}
}

func (h *ProfessorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *ProfessorHandler) list(w http.ResponseWriter, r *http.Request) {
	professors, err := h.professorService.List(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, professors)
}

func (h *ProfessorHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	professor, err := h.professorService.Get(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, professor)
}

func (h *ProfessorHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.ProfessorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	professor, err := h.professorService.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, professor)
}

func (h *ProfessorHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req service.ProfessorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	professor, err := h.professorService.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, professor)
}

func (h *ProfessorHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.professorService.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
