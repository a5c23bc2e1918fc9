package collaborator

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Guard is the access check every project-scoped service runs first.
type Guard interface {
	RequireRole(ctx context.Context, projectId int, min Role) (Role, error)
}

type Service interface {
	Guard
	ListCollaborators(ctx context.Context, projectId int) ([]Collaborator, error)
	Invite(ctx context.Context, projectId int, email string, role Role) (Invitation, error)
	ListInvitations(ctx context.Context, projectId int) ([]Invitation, error)
	RevokeInvitation(ctx context.Context, projectId int, invitationId int) error
	AcceptInvitation(ctx context.Context, token string) (Collaborator, error)
	ChangeRole(ctx context.Context, projectId int, userId int, role Role) (Collaborator, error)
	RemoveCollaborator(ctx context.Context, projectId int, userId int) error
}

// ProjectNameFunc resolves a project's display name for notifications.
type ProjectNameFunc func(ctx context.Context, projectId int) (string, error)

type ServiceImpl struct {
	repo        Repository
	users       user.Service
	projectName ProjectNameFunc
	eventBus    *event_bus.EventBus
	clock       utils.Clock
}

func NewService(repo Repository, users user.Service, projectName ProjectNameFunc, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, users: users, projectName: projectName, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) RequireRole(ctx context.Context, projectId int, min Role) (Role, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	role, err := s.repo.GetRole(ctx, projectId, userId)
	if errors.Is(err, ErrCollaboratorNotFound) {
		log.Debugf("user %d is not a collaborator of project %d", userId, projectId)
		return "", ErrForbidden
	}
	if err != nil {
		return "", err
	}
	if !role.AtLeast(min) {
		log.Debugf("user %d has role %s on project %d, %s required", userId, role, projectId, min)
		return role, ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ListCollaborators(ctx context.Context, projectId int) ([]Collaborator, error) {
	if _, err := s.RequireRole(ctx, projectId, RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListCollaborators(ctx, projectId)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", rest.Invalid("email", "Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", rest.Invalid("email", "Email address is not valid")
	}
	return email, nil
}

func (s *ServiceImpl) Invite(ctx context.Context, projectId int, email string, role Role) (Invitation, error) {
	if _, err := s.RequireRole(ctx, projectId, RoleOwner); err != nil {
		return Invitation{}, err
	}
	inviter, err := user.CurrentUser(ctx)
	if err != nil {
		return Invitation{}, fmt.Errorf("failed to get current user: %w", err)
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return Invitation{}, err
	}
	if role != RoleViewer && role != RoleEditor {
		return Invitation{}, rest.Invalid("role", "Role must be viewer or editor")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if _, err := s.repo.GetRole(ctx, projectId, existing.Id); err == nil {
			return Invitation{}, ErrAlreadyMember
		} else if !errors.Is(err, ErrCollaboratorNotFound) {
			return Invitation{}, err
		}
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return Invitation{}, err
	}

	invitation, err := s.repo.CreateInvitation(ctx, Invitation{
		ProjectId: projectId,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		CreatedBy: inviter.Id,
	})
	if err != nil {
		return Invitation{}, err
	}

	projectName, err := s.projectName(ctx, projectId)
	if err != nil {
		log.Warnf("could not resolve name of project %d: %v", projectId, err)
	}
	err = s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.CollaboratorInvited, event_bus.CollaboratorInvitedPayload{
		ProjectId:   projectId,
		ProjectName: projectName,
		Email:       email,
		Role:        string(role),
		Token:       invitation.Token,
		InvitedBy:   inviter.DisplayName,
	}))
	if err != nil {
		// the invitation exists and can be resent, do not fail the request
		log.Errorf("failed to publish invitation of %s to project %d: %v", email, projectId, err)
	}
	return invitation, nil
}

func (s *ServiceImpl) ListInvitations(ctx context.Context, projectId int) ([]Invitation, error) {
	if _, err := s.RequireRole(ctx, projectId, RoleOwner); err != nil {
		return nil, err
	}
	return s.repo.ListPendingInvitations(ctx, projectId)
}

func (s *ServiceImpl) RevokeInvitation(ctx context.Context, projectId int, invitationId int) error {
	if _, err := s.RequireRole(ctx, projectId, RoleOwner); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteInvitation(ctx, projectId, invitationId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrInvitationNotFound
	}
	return nil
}

func (s *ServiceImpl) AcceptInvitation(ctx context.Context, token string) (Collaborator, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Collaborator{}, fmt.Errorf("failed to get current user: %w", err)
	}
	invitation, err := s.repo.GetInvitationByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return Collaborator{}, err
	}
	if invitation.AcceptedAt != nil {
		return Collaborator{}, ErrInvitationNotFound
	}
	if !strings.EqualFold(invitation.Email, current.Email) {
		return Collaborator{}, ErrInvitationEmailMismatch
	}
	if err := s.repo.AcceptInvitation(ctx, invitation, current.Id, s.clock.Now()); err != nil {
		return Collaborator{}, err
	}
	role, err := s.repo.GetRole(ctx, invitation.ProjectId, current.Id)
	if err != nil {
		return Collaborator{}, err
	}
	return Collaborator{
		ProjectId:   invitation.ProjectId,
		UserId:      current.Id,
		Email:       current.Email,
		DisplayName: current.DisplayName,
		Role:        role,
	}, nil
}

func (s *ServiceImpl) ChangeRole(ctx context.Context, projectId int, userId int, role Role) (Collaborator, error) {
	if _, err := s.RequireRole(ctx, projectId, RoleOwner); err != nil {
		return Collaborator{}, err
	}
	if role != RoleViewer && role != RoleEditor {
		return Collaborator{}, rest.Invalid("role", "Role must be viewer or editor")
	}
	currentRole, err := s.repo.GetRole(ctx, projectId, userId)
	if err != nil {
		return Collaborator{}, err
	}
	if currentRole == RoleOwner {
		return Collaborator{}, ErrOwnerImmutable
	}
	updated, err := s.repo.UpdateRole(ctx, projectId, userId, role)
	if err != nil {
		return Collaborator{}, err
	}
	if !updated {
		return Collaborator{}, ErrCollaboratorNotFound
	}
	collaborators, err := s.repo.ListCollaborators(ctx, projectId)
	if err != nil {
		return Collaborator{}, err
	}
	for _, c := range collaborators {
		if c.UserId == userId {
			return c, nil
		}
	}
	return Collaborator{}, ErrCollaboratorNotFound
}

// RemoveCollaborator is allowed to the owner, and to any collaborator
// leaving the project on their own.
func (s *ServiceImpl) RemoveCollaborator(ctx context.Context, projectId int, userId int) error {
	currentId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	minRole := RoleOwner
	if currentId == userId {
		minRole = RoleViewer
	}
	if _, err := s.RequireRole(ctx, projectId, minRole); err != nil {
		return err
	}
	targetRole, err := s.repo.GetRole(ctx, projectId, userId)
	if err != nil {
		return err
	}
	if targetRole == RoleOwner {
		return ErrOwnerImmutable
	}
	removed, err := s.repo.RemoveCollaborator(ctx, projectId, userId)
	if err != nil {
		return err
	}
	if !removed {
		return ErrCollaboratorNotFound
	}
	return nil
}
