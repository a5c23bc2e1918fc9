package project

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	log "github.com/sirupsen/logrus"
)

type PermissionsDTO struct {
	CanEdit                bool `json:"canEdit"`
	CanComment             bool `json:"canComment"`
	CanManageCollaborators bool `json:"canManageCollaborators"`
	CanDelete              bool `json:"canDelete"`
}

type ProjectDTO struct {
	Id          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Currency    string         `json:"currency"`
	StartDate   rest.Date      `json:"startDate"`
	Archived    bool           `json:"archived"`
	Role        string         `json:"role,omitempty"`
	Permissions PermissionsDTO `json:"permissions"`
}

type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrProjectNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List projects the current user collaborates on
// @Tags Project
// @Produce json
// @Param includeArchived query bool false "Include archived projects"
// @Success 200 {array} ProjectDTO
// @Router /api/project [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	projects, err := h.service.ListProjects(r.Context(), includeArchived)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a project
// @Tags Project
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} ProjectDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/project/{projectId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	p, err := h.service.GetProject(r.Context(), projectId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Create godoc
// @Summary Create a project
// @Tags Project
// @Accept json
// @Produce json
// @Param project body ProjectDTO true "Project"
// @Success 201 {object} ProjectDTO
// @Router /api/project [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ProjectDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	log.Debugf("Creating project: %s", dto.Name)
	created, err := h.service.CreateProject(r.Context(), fromDTO(dto))
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a project
// @Tags Project
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param project body ProjectDTO true "Project"
// @Success 200 {object} ProjectDTO
// @Router /api/project/{projectId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto ProjectDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	p := fromDTO(dto)
	p.Id = projectId
	updated, err := h.service.UpdateProject(r.Context(), p)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Archive godoc
// @Summary Archive or restore a project
// @Tags Project
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param archive body ArchiveRequest true "Archived flag"
// @Success 200 {object} ProjectDTO
// @Router /api/project/{projectId}/archive [put]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var req ArchiveRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.service.ArchiveProject(r.Context(), projectId, req.Archived)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(p))
}

// Delete godoc
// @Summary Delete a project with all its data
// @Tags Project
// @Param projectId path int true "Project ID"
// @Success 204
// @Router /api/project/{projectId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	if err := h.service.DeleteProject(r.Context(), projectId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDTO(p Project) ProjectDTO {
	permissions := collaborator.PermissionsFor(p.Role)
	return ProjectDTO{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Currency:    p.Currency,
		StartDate:   rest.NewDate(p.StartDate),
		Archived:    p.Archived,
		Role:        string(p.Role),
		Permissions: PermissionsDTO{
			CanEdit:                permissions.CanEdit,
			CanComment:             permissions.CanComment,
			CanManageCollaborators: permissions.CanManageCollaborators,
			CanDelete:              permissions.CanDelete,
		},
	}
}

func fromDTO(dto ProjectDTO) Project {
	return Project{
		Id:          dto.Id,
		Name:        dto.Name,
		Description: dto.Description,
		Currency:    dto.Currency,
		StartDate:   dto.StartDate.Time,
	}
}
