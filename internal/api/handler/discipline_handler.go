package handler

import (
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type DisciplineHandler struct {
	disciplineService *service.DisciplineService
}

func NewDisciplineHandler(disciplineService *service.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{disciplineService: disciplineService}
}

func (h *DisciplineHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/slug/{slug}", h.getBySlug) // GET /api/v1/disciplines/slug/calculo-i
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *DisciplineHandler) list(w http.ResponseWriter, r *http.Request) {
	disciplines, err := h.disciplineService.List(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, disciplines)
}

func (h *DisciplineHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	discipline, err := h.disciplineService.Get(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, discipline)
}

func (h *DisciplineHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	discipline, err := h.disciplineService.GetBySlug(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, discipline)
}

func (h *DisciplineHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.DisciplineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	discipline, err := h.disciplineService.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, discipline)
}

func (h *DisciplineHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req service.DisciplineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	discipline, err := h.disciplineService.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, discipline)
}

func (h *DisciplineHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.disciplineService.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
