package collaborator

import (
	"net/http"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type CollaboratorDTO struct {
	UserId      int    `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type InvitationDTO struct {
	Id        int       `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type AcceptRequest struct {
	Token string `json:"token"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrCollaboratorNotFound, Status: http.StatusNotFound},
	{Err: ErrInvitationNotFound, Status: http.StatusNotFound},
	{Err: ErrAlreadyMember, Status: http.StatusConflict},
	{Err: ErrOwnerImmutable, Status: http.StatusConflict},
	{Err: ErrInvitationEmailMismatch, Status: http.StatusForbidden},
	{Err: ErrInvalidRole, Status: http.StatusBadRequest},
}, AccessErrors...)

// List godoc
// @Summary List collaborators of a project
// @Tags Collaborator
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} CollaboratorDTO
// @Router /api/project/{projectId}/collaborator [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	collaborators, err := h.service.ListCollaborators(r.Context(), projectId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]CollaboratorDTO, 0, len(collaborators))
	for _, c := range collaborators {
		dtos = append(dtos, toCollaboratorDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Invite godoc
// @Summary Invite a user to a project by email
// @Tags Collaborator
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param invitation body InviteRequest true "Invitation"
// @Success 201 {object} InvitationDTO
// @Failure 409 {object} rest.ErrorResponse "Already a collaborator"
// @Router /api/project/{projectId}/invitation [post]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var req InviteRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		rest.Fail(w, rest.Invalid("role", "Role must be viewer or editor"))
		return
	}
	log.Debugf("Inviting %s to project %d as %s", req.Email, projectId, role)
	invitation, err := h.service.Invite(r.Context(), projectId, req.Email, role)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toInvitationDTO(invitation))
}

// ListInvitations godoc
// @Summary List pending invitations of a project
// @Tags Collaborator
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} InvitationDTO
// @Router /api/project/{projectId}/invitation [get]
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	invitations, err := h.service.ListInvitations(r.Context(), projectId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]InvitationDTO, 0, len(invitations))
	for _, inv := range invitations {
		dto := toInvitationDTO(inv)
		dto.Token = ""
		dtos = append(dtos, dto)
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// RevokeInvitation godoc
// @Summary Revoke a pending invitation
// @Tags Collaborator
// @Param projectId path int true "Project ID"
// @Param invitationId path int true "Invitation ID"
// @Success 204
// @Router /api/project/{projectId}/invitation/{invitationId} [delete]
func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	invitationId, ok := rest.PathInt(w, r, "invitationId")
	if !ok {
		return
	}
	if err := h.service.RevokeInvitation(r.Context(), projectId, invitationId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvitation godoc
// @Summary Accept an invitation sent to the current user's email
// @Tags Collaborator
// @Accept json
// @Produce json
// @Param token body AcceptRequest true "Invitation token"
// @Success 200 {object} CollaboratorDTO
// @Router /api/invitation/accept [post]
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req AcceptRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		rest.Fail(w, rest.Invalid("token", "Invitation token is required"))
		return
	}
	collaborator, err := h.service.AcceptInvitation(r.Context(), req.Token)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toCollaboratorDTO(collaborator))
}

// ChangeRole godoc
// @Summary Change the role of a collaborator
// @Tags Collaborator
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param userId path int true "User ID"
// @Param role body RoleRequest true "Role"
// @Success 200 {object} CollaboratorDTO
// @Router /api/project/{projectId}/collaborator/{userId} [put]
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	userId, ok := rest.PathInt(w, r, "userId")
	if !ok {
		return
	}
	var req RoleRequest
	if !rest.DecodeJSON(w, r, &req) {
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		rest.Fail(w, rest.Invalid("role", "Role must be viewer or editor"))
		return
	}
	collaborator, err := h.service.ChangeRole(r.Context(), projectId, userId, role)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toCollaboratorDTO(collaborator))
}

// Remove godoc
// @Summary Remove a collaborator, or leave the project
// @Tags Collaborator
// @Param projectId path int true "Project ID"
// @Param userId path int true "User ID"
// @Success 204
// @Router /api/project/{projectId}/collaborator/{userId} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	userId, ok := rest.PathInt(w, r, "userId")
	if !ok {
		return
	}
	if err := h.service.RemoveCollaborator(r.Context(), projectId, userId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCollaboratorDTO(c Collaborator) CollaboratorDTO {
	return CollaboratorDTO{
		UserId:      c.UserId,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Role:        string(c.Role),
	}
}

func toInvitationDTO(inv Invitation) InvitationDTO {
	return InvitationDTO{
		Id:        inv.Id,
		Email:     inv.Email,
		Role:      string(inv.Role),
		Token:     inv.Token,
		CreatedAt: inv.Created,
	}
}
