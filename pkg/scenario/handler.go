package scenario

import (
	"net/http"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
)

type ScenarioDTO struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

type DuplicateRequest struct {
	Name string `json:"name"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrScenarioNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List scenarios of a project
// @Tags Scenario
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} ScenarioDTO
// @Router /api/project/{projectId}/scenario [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	scenarios, err := h.service.ListScenarios(r.Context(), projectId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		dtos = append(dtos, toDTO(s))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a scenario
// @Tags Scenario
// @Produce json
// @Param projectId path int true "Project ID"
// @Param scenarioId path int true "Scenario ID"
// @Success 200 {object} ScenarioDTO
// @Router /api/project/{projectId}/scenario/{scenarioId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, scenarioId, ok := pathIds(w, r)
	if !ok {
		return
	}
	s, err := h.service.GetScenario(r.Context(), projectId, scenarioId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(s))
}

// Create godoc
// @Summary Create an empty scenario
// @Tags Scenario
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param scenario body ScenarioDTO true "Scenario"
// @Success 201 {object} ScenarioDTO
// @Router /api/project/{projectId}/scenario [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto ScenarioDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	created, err := h.service.CreateScenario(r.Context(), Scenario{ProjectId: projectId, Name: dto.Name, Description: dto.Description})
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Rename a scenario
// @Tags Scenario
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param scenarioId path int true "Scenario ID"
// @Param scenario body ScenarioDTO true "Scenario"
// @Success 200 {object} ScenarioDTO
// @Router /api/project/{projectId}/scenario/{scenarioId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, scenarioId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto ScenarioDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	updated, err := h.service.UpdateScenario(r.Context(), Scenario{Id: scenarioId, ProjectId: projectId, Name: dto.Name, Description: dto.Description})
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a scenario with its entries
// @Tags Scenario
// @Param projectId path int true "Project ID"
// @Param scenarioId path int true "Scenario ID"
// @Success 204
// @Router /api/project/{projectId}/scenario/{scenarioId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, scenarioId, ok := pathIds(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteScenario(r.Context(), projectId, scenarioId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate godoc
// @Summary Copy a scenario with its entries
// @Tags Scenario
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param scenarioId path int true "Scenario ID"
// @Param request body DuplicateRequest false "Name of the copy"
// @Success 201 {object} ScenarioDTO
// @Router /api/project/{projectId}/scenario/{scenarioId}/duplicate [post]
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	projectId, scenarioId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var req DuplicateRequest
	if r.ContentLength != 0 && !rest.DecodeJSON(w, r, &req) {
		return
	}
	created, err := h.service.Duplicate(r.Context(), projectId, scenarioId, req.Name)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return 0, 0, false
	}
	scenarioId, ok := rest.PathInt(w, r, "scenarioId")
	if !ok {
		return 0, 0, false
	}
	return projectId, scenarioId, true
}

func toDTO(s Scenario) ScenarioDTO {
	return ScenarioDTO{Id: s.Id, Name: s.Name, Description: s.Description, Created: s.Created}
}
