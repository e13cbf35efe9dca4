package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (h *EnrollmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/student/{id}", h.listByStudent)
	r.Get("/class/{id}", h.listByClass)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *EnrollmentHandler) list(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.enrollmentService.List(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) listByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListByStudent(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) listByClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListByClass(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollmentService.Get(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.EnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	enrollment, err := h.enrollmentService.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req service.EnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	enrollment, err := h.enrollmentService.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.enrollmentService.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
