package category

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	log "github.com/sirupsen/logrus"
)

type CategoryDTO struct {
	Id       int           `json:"id"`
	Type     string        `json:"type"`
	ParentId *int          `json:"parentId,omitempty"`
	Name     string        `json:"name"`
	Position int           `json:"position"`
	Children []CategoryDTO `json:"children,omitempty"`
}

type CreateCategoryRequest struct {
	Type     string `json:"type"`
	ParentId *int   `json:"parentId"`
	Name     string `json:"name"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type MoveRequest struct {
	PrecedingId int `json:"precedingId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrCategoryNotFound, Status: http.StatusNotFound},
	{Err: ErrDuplicateCategory, Status: http.StatusConflict},
	{Err: ErrCategoryInUse, Status: http.StatusConflict},
	{Err: ErrTooDeep, Status: http.StatusBadRequest},
	{Err: ErrInvalidType, Status: http.StatusBadRequest},
}, collaborator.AccessErrors...)

// GetTree godoc
// @Summary Get the category tree of a project
// @Tags Category
// @Produce json
// @Param projectId path int true "Project ID"
// @Param type query string true "income or expense"
// @Success 200 {array} CategoryDTO
// @Router /api/project/{projectId}/category [get]
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	categoryType, err := ParseType(r.URL.Query().Get("type"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid type", "'type' must be income or expense")
		return
	}
	tree, err := h.service.GetTree(r.Context(), projectId, categoryType)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTOs(tree))
}

// Create godoc
// @Summary Add a category, or a sub-category when parentId is given
// @Tags Category
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param category body CreateCategoryRequest true "Category"
// @Success 201 {object} CategoryDTO
// @Failure 409 {object} rest.ErrorResponse "Duplicate name"
// @Router /api/project/{projectId}/category [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	log.Debugf("Adding category %q to project %d", req.Name, projectId)

	var created Category
	var err error
	if req.ParentId != nil {
		created, err = h.service.AddSubCategory(r.Context(), projectId, *req.ParentId, req.Name)
	} else {
		created, err = h.service.AddCategory(r.Context(), projectId, Type(req.Type), req.Name)
	}
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Rename godoc
// @Summary Rename a category
// @Tags Category
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param categoryId path int true "Category ID"
// @Param name body RenameRequest true "New name"
// @Success 200 {object} CategoryDTO
// @Router /api/project/{projectId}/category/{categoryId} [put]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	categoryId, ok := rest.PathInt(w, r, "categoryId")
	if !ok {
		return
	}
	var req RenameRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	renamed, err := h.service.RenameCategory(r.Context(), projectId, categoryId, req.Name)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(renamed))
}

// Delete godoc
// @Summary Delete a category with its sub-categories
// @Tags Category
// @Param projectId path int true "Project ID"
// @Param categoryId path int true "Category ID"
// @Success 204
// @Failure 409 {object} rest.ErrorResponse "Category in use"
// @Router /api/project/{projectId}/category/{categoryId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	categoryId, ok := rest.PathInt(w, r, "categoryId")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), projectId, categoryId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Move godoc
// @Summary Move a category after another one
// @Tags Category
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param categoryId path int true "Category ID"
// @Param position body MoveRequest true "Preceding category, 0 for first"
// @Success 200 {array} CategoryDTO
// @Router /api/project/{projectId}/category/{categoryId}/position [put]
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	categoryId, ok := rest.PathInt(w, r, "categoryId")
	if !ok {
		return
	}
	var req MoveRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	tree, err := h.service.MoveCategoryAfter(r.Context(), projectId, categoryId, req.PrecedingId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTOs(tree))
}

func toDTO(c Category) CategoryDTO {
	dto := CategoryDTO{
		Id:       c.Id,
		Type:     string(c.Type),
		ParentId: c.ParentId,
		Name:     c.Name,
		Position: c.Position,
	}
	if len(c.Children) > 0 {
		dto.Children = toDTOs(c.Children)
	}
	return dto
}

func toDTOs(categories []Category) []CategoryDTO {
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toDTO(c))
	}
	return dtos
}
