package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type GradeHandler struct {
	gradeService *service.GradeService
}

func NewGradeHandler(gradeService *service.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

func (h *GradeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/student/{id}", h.listByStudent) // owner only
	r.Get("/class/{id}", h.listByClass)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *GradeHandler) list(w http.ResponseWriter, r *http.Request) {
	grades, err := h.gradeService.List(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, grades)
}

func (h *GradeHandler) listByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	grades, err := h.gradeService.ListByStudent(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, grades)
}

func (h *GradeHandler) listByClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	grades, err := h.gradeService.ListByClass(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, grades)
}

func (h *GradeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	grade, err := h.gradeService.Get(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, grade)
}

func (h *GradeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.GradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	grade, err := h.gradeService.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, grade)
}

func (h *GradeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req service.GradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	grade, err := h.gradeService.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, grade)
}

func (h *GradeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.gradeService.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
