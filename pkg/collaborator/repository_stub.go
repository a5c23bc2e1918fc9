package collaborator

import (
	"context"
	"sort"
	"time"
)

type memberKey struct {
	projectId int
	userId    int
}

type RepositoryStub struct {
	roles        map[memberKey]Role
	users        map[int]Collaborator
	invitations  map[int]Invitation
	nextId       int
	joinSequence []memberKey
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		roles:       map[memberKey]Role{},
		users:       map[int]Collaborator{},
		invitations: map[int]Invitation{},
	}
}

// RegisterUser makes user details known to ListCollaborators.
func (s *RepositoryStub) RegisterUser(userId int, email string, displayName string) {
	s.users[userId] = Collaborator{UserId: userId, Email: email, DisplayName: displayName}
}

func (s *RepositoryStub) GetRole(ctx context.Context, projectId int, userId int) (Role, error) {
	role, ok := s.roles[memberKey{projectId, userId}]
	if !ok {
		return "", ErrCollaboratorNotFound
	}
	return role, nil
}

func (s *RepositoryStub) ListCollaborators(ctx context.Context, projectId int) ([]Collaborator, error) {
	collaborators := make([]Collaborator, 0)
	for _, key := range s.joinSequence {
		role, ok := s.roles[key]
		if key.projectId != projectId || !ok {
			continue
		}
		c := s.users[key.userId]
		c.ProjectId = projectId
		c.UserId = key.userId
		c.Role = role
		collaborators = append(collaborators, c)
	}
	return collaborators, nil
}

func (s *RepositoryStub) AddCollaborator(ctx context.Context, projectId int, userId int, role Role) error {
	key := memberKey{projectId, userId}
	if _, exists := s.roles[key]; !exists {
		s.joinSequence = append(s.joinSequence, key)
	}
	s.roles[key] = role
	return nil
}

func (s *RepositoryStub) UpdateRole(ctx context.Context, projectId int, userId int, role Role) (bool, error) {
	key := memberKey{projectId, userId}
	if _, ok := s.roles[key]; !ok {
		return false, nil
	}
	s.roles[key] = role
	return true, nil
}

func (s *RepositoryStub) RemoveCollaborator(ctx context.Context, projectId int, userId int) (bool, error) {
	key := memberKey{projectId, userId}
	if _, ok := s.roles[key]; !ok {
		return false, nil
	}
	delete(s.roles, key)
	return true, nil
}

func (s *RepositoryStub) CreateInvitation(ctx context.Context, invitation Invitation) (Invitation, error) {
	s.nextId++
	invitation.Id = s.nextId
	invitation.Created = time.Now()
	s.invitations[invitation.Id] = invitation
	return invitation, nil
}

func (s *RepositoryStub) GetInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	for _, inv := range s.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return Invitation{}, ErrInvitationNotFound
}

func (s *RepositoryStub) ListPendingInvitations(ctx context.Context, projectId int) ([]Invitation, error) {
	invitations := make([]Invitation, 0)
	for _, inv := range s.invitations {
		if inv.ProjectId == projectId && inv.AcceptedAt == nil {
			invitations = append(invitations, inv)
		}
	}
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].Id < invitations[j].Id })
	return invitations, nil
}

func (s *RepositoryStub) DeleteInvitation(ctx context.Context, projectId int, invitationId int) (bool, error) {
	inv, ok := s.invitations[invitationId]
	if !ok || inv.ProjectId != projectId || inv.AcceptedAt != nil {
		return false, nil
	}
	delete(s.invitations, invitationId)
	return true, nil
}

func (s *RepositoryStub) AcceptInvitation(ctx context.Context, invitation Invitation, userId int, at time.Time) error {
	if _, err := s.GetRole(ctx, invitation.ProjectId, userId); err != nil {
		_ = s.AddCollaborator(ctx, invitation.ProjectId, userId, invitation.Role)
	}
	invitation.AcceptedAt = &at
	s.invitations[invitation.Id] = invitation
	return nil
}
