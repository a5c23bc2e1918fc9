package comment

import (
	"net/http"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
)

type CommentDTO struct {
	Id         int       `json:"id"`
	TargetType string    `json:"targetType"`
	TargetId   int       `json:"targetId"`
	AuthorId   int       `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

type BodyRequest struct {
	Body string `json:"body"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrCommentNotFound, Status: http.StatusNotFound},
	{Err: ErrNotAuthor, Status: http.StatusForbidden},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List the comments of a project, entry or actual
// @Tags Comment
// @Produce json
// @Param projectId path int true "Project ID"
// @Param targetType query string true "project, entry or actual"
// @Param targetId query int true "Target ID"
// @Success 200 {array} CommentDTO
// @Router /api/project/{projectId}/comment [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	targetId, ok := rest.QueryOptionalInt(w, r, "targetId")
	if !ok {
		return
	}
	if targetId == nil {
		rest.WriteError(w, http.StatusBadRequest, "Missing targetId", "'targetId' is required")
		return
	}
	targetType := TargetType(r.URL.Query().Get("targetType"))
	comments, err := h.service.ListComments(r.Context(), projectId, targetType, *targetId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, toDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Comment on a project, entry or actual
// @Tags Comment
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param comment body CommentDTO true "Comment"
// @Success 201 {object} CommentDTO
// @Router /api/project/{projectId}/comment [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto CommentDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	created, err := h.service.AddComment(r.Context(), Comment{
		ProjectId:  projectId,
		TargetType: TargetType(dto.TargetType),
		TargetId:   dto.TargetId,
		Body:       dto.Body,
	})
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Edit an own comment
// @Tags Comment
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param commentId path int true "Comment ID"
// @Param body body BodyRequest true "New text"
// @Success 200 {object} CommentDTO
// @Router /api/project/{projectId}/comment/{commentId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, commentId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var req BodyRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	updated, err := h.service.EditComment(r.Context(), projectId, commentId, req.Body)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a comment
// @Tags Comment
// @Param projectId path int true "Project ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Router /api/project/{projectId}/comment/{commentId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, commentId, ok := pathIds(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteComment(r.Context(), projectId, commentId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return 0, 0, false
	}
	commentId, ok := rest.PathInt(w, r, "commentId")
	if !ok {
		return 0, 0, false
	}
	return projectId, commentId, true
}

func toDTO(c Comment) CommentDTO {
	return CommentDTO{
		Id:         c.Id,
		TargetType: string(c.TargetType),
		TargetId:   c.TargetId,
		AuthorId:   c.AuthorId,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		Created:    c.Created,
		Updated:    c.Updated,
	}
}
