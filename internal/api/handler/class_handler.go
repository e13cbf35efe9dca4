package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ClassHandler struct {
	classService *service.ClassService
}

func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

func (h *ClassHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/discipline/{id}", h.listByDiscipline)
	r.Get("/professor/{id}", h.listByProfessor)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *ClassHandler) list(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classService.List(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) listByDiscipline(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	classes, err := h.classService.ListByDiscipline(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) listByProfessor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	classes, err := h.classService.ListByProfessor(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	class, err := h.classService.Get(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.ClassRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	class, err := h.classService.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, class)
}

func (h *ClassHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req service.ClassRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	class, err := h.classService.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.classService.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
