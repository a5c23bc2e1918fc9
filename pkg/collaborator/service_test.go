package collaborator

import (
	"context"
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectId = 7

type serviceFixture struct {
	service  *ServiceImpl
	repo     *RepositoryStub
	users    *user.ServiceImpl
	owner    user.User
	invited  []event_bus.CollaboratorInvitedPayload
	clock    *utils.FixedClock
	ownerCtx context.Context
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:  NewRepositoryStub(),
		users: user.NewUserService(user.NewStubUserRepository()),
		clock: &utils.FixedClock{At: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	bus := event_bus.NewEventBus()
	event_bus.SubscribeTyped(bus, event_bus.CollaboratorInvited, func(e event_bus.Typed[event_bus.CollaboratorInvitedPayload]) error {
		f.invited = append(f.invited, e.Payload)
		return nil
	})
	projectName := func(ctx context.Context, id int) (string, error) { return "Home renovation", nil }
	f.service = NewService(f.repo, f.users, projectName, bus, f.clock)

	f.owner = f.addUser(t, "owner@example.com", RoleOwner)
	f.ownerCtx = user.WithUser(context.Background(), f.owner)
	return f
}

// addUser provisions a user and, unless role is empty, joins them to the project.
func (f *serviceFixture) addUser(t *testing.T, email string, role Role) user.User {
	t.Helper()
	u, err := f.users.EnsureUser(context.Background(), "uid-"+email, email)
	require.NoError(t, err)
	f.repo.RegisterUser(u.Id, u.Email, u.DisplayName)
	if role != "" {
		require.NoError(t, f.repo.AddCollaborator(context.Background(), projectId, u.Id, role))
	}
	return u
}

func TestServiceImpl_RequireRole(t *testing.T) {
	f := setupService(t)
	viewer := f.addUser(t, "viewer@example.com", RoleViewer)
	outsider := f.addUser(t, "outsider@example.com", "")

	t.Run("should return the role when it is sufficient", func(t *testing.T) {
		role, err := f.service.RequireRole(f.ownerCtx, projectId, RoleEditor)

		require.NoError(t, err)
		assert.Equal(t, RoleOwner, role)
	})

	t.Run("should forbid a role below the minimum", func(t *testing.T) {
		role, err := f.service.RequireRole(user.WithUser(context.Background(), viewer), projectId, RoleEditor)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, RoleViewer, role)
	})

	t.Run("should forbid users who are not collaborators", func(t *testing.T) {
		_, err := f.service.RequireRole(user.WithUser(context.Background(), outsider), projectId, RoleViewer)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("should fail without a user in the context", func(t *testing.T) {
		_, err := f.service.RequireRole(context.Background(), projectId, RoleViewer)

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_Invite(t *testing.T) {
	t.Run("should create an invitation and publish an event", func(t *testing.T) {
		// given
		f := setupService(t)

		// when
		invitation, err := f.service.Invite(f.ownerCtx, projectId, " New@Example.com ", RoleEditor)

		// then
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", invitation.Email)
		assert.Equal(t, RoleEditor, invitation.Role)
		assert.NotEmpty(t, invitation.Token)
		require.Len(t, f.invited, 1)
		assert.Equal(t, "Home renovation", f.invited[0].ProjectName)
		assert.Equal(t, invitation.Token, f.invited[0].Token)
		assert.Equal(t, f.owner.DisplayName, f.invited[0].InvitedBy)
	})

	t.Run("should reject inviting an existing collaborator", func(t *testing.T) {
		f := setupService(t)
		f.addUser(t, "member@example.com", RoleViewer)

		_, err := f.service.Invite(f.ownerCtx, projectId, "member@example.com", RoleEditor)

		assert.ErrorIs(t, err, ErrAlreadyMember)
		assert.Empty(t, f.invited)
	})

	t.Run("should reject the owner role", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Invite(f.ownerCtx, projectId, "new@example.com", RoleOwner)

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("should reject a malformed email", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Invite(f.ownerCtx, projectId, "not-an-email", RoleViewer)

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "email", validationErr.Field)
	})

	t.Run("should allow only the owner to invite", func(t *testing.T) {
		f := setupService(t)
		editor := f.addUser(t, "editor@example.com", RoleEditor)

		_, err := f.service.Invite(user.WithUser(context.Background(), editor), projectId, "new@example.com", RoleViewer)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestServiceImpl_AcceptInvitation(t *testing.T) {
	t.Run("should add the invited user as collaborator", func(t *testing.T) {
		// given
		f := setupService(t)
		invitation, err := f.service.Invite(f.ownerCtx, projectId, "new@example.com", RoleEditor)
		require.NoError(t, err)
		invitee := f.addUser(t, "new@example.com", "")

		// when
		collaborator, err := f.service.AcceptInvitation(user.WithUser(context.Background(), invitee), invitation.Token)

		// then
		require.NoError(t, err)
		assert.Equal(t, RoleEditor, collaborator.Role)
		assert.Equal(t, projectId, collaborator.ProjectId)
		pending, err := f.service.ListInvitations(f.ownerCtx, projectId)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("should reject a user with another email", func(t *testing.T) {
		f := setupService(t)
		invitation, err := f.service.Invite(f.ownerCtx, projectId, "new@example.com", RoleEditor)
		require.NoError(t, err)
		stranger := f.addUser(t, "stranger@example.com", "")

		_, err = f.service.AcceptInvitation(user.WithUser(context.Background(), stranger), invitation.Token)

		assert.ErrorIs(t, err, ErrInvitationEmailMismatch)
	})

	t.Run("should not accept the same invitation twice", func(t *testing.T) {
		f := setupService(t)
		invitation, err := f.service.Invite(f.ownerCtx, projectId, "new@example.com", RoleViewer)
		require.NoError(t, err)
		invitee := f.addUser(t, "new@example.com", "")
		ctx := user.WithUser(context.Background(), invitee)
		_, err = f.service.AcceptInvitation(ctx, invitation.Token)
		require.NoError(t, err)

		_, err = f.service.AcceptInvitation(ctx, invitation.Token)

		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("should fail for an unknown token", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.AcceptInvitation(f.ownerCtx, "missing")

		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})
}

func TestServiceImpl_RevokeInvitation(t *testing.T) {
	f := setupService(t)
	invitation, err := f.service.Invite(f.ownerCtx, projectId, "new@example.com", RoleViewer)
	require.NoError(t, err)

	err = f.service.RevokeInvitation(f.ownerCtx, projectId, invitation.Id)
	require.NoError(t, err)

	err = f.service.RevokeInvitation(f.ownerCtx, projectId, invitation.Id)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestServiceImpl_ChangeRole(t *testing.T) {
	t.Run("should change the role of a collaborator", func(t *testing.T) {
		f := setupService(t)
		viewer := f.addUser(t, "viewer@example.com", RoleViewer)

		updated, err := f.service.ChangeRole(f.ownerCtx, projectId, viewer.Id, RoleEditor)

		require.NoError(t, err)
		assert.Equal(t, RoleEditor, updated.Role)
		assert.Equal(t, viewer.Email, updated.Email)
	})

	t.Run("should not change the owner", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.ChangeRole(f.ownerCtx, projectId, f.owner.Id, RoleViewer)

		assert.ErrorIs(t, err, ErrOwnerImmutable)
	})

	t.Run("should not promote to owner", func(t *testing.T) {
		f := setupService(t)
		viewer := f.addUser(t, "viewer@example.com", RoleViewer)

		_, err := f.service.ChangeRole(f.ownerCtx, projectId, viewer.Id, RoleOwner)

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestServiceImpl_RemoveCollaborator(t *testing.T) {
	t.Run("should let the owner remove a collaborator", func(t *testing.T) {
		f := setupService(t)
		editor := f.addUser(t, "editor@example.com", RoleEditor)

		err := f.service.RemoveCollaborator(f.ownerCtx, projectId, editor.Id)

		require.NoError(t, err)
		collaborators, err := f.service.ListCollaborators(f.ownerCtx, projectId)
		require.NoError(t, err)
		assert.Len(t, collaborators, 1)
	})

	t.Run("should let a collaborator leave", func(t *testing.T) {
		f := setupService(t)
		viewer := f.addUser(t, "viewer@example.com", RoleViewer)

		err := f.service.RemoveCollaborator(user.WithUser(context.Background(), viewer), projectId, viewer.Id)

		assert.NoError(t, err)
	})

	t.Run("should not let an editor remove someone else", func(t *testing.T) {
		f := setupService(t)
		editor := f.addUser(t, "editor@example.com", RoleEditor)
		viewer := f.addUser(t, "viewer@example.com", RoleViewer)

		err := f.service.RemoveCollaborator(user.WithUser(context.Background(), editor), projectId, viewer.Id)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("should not remove the owner", func(t *testing.T) {
		f := setupService(t)

		err := f.service.RemoveCollaborator(f.ownerCtx, projectId, f.owner.Id)

		assert.ErrorIs(t, err, ErrOwnerImmutable)
	})
}

func TestPermissionsFor(t *testing.T) {
	assert.Equal(t, Permissions{CanComment: true}, PermissionsFor(RoleViewer))
	assert.Equal(t, Permissions{CanEdit: true, CanComment: true}, PermissionsFor(RoleEditor))
	assert.Equal(t, Permissions{CanEdit: true, CanComment: true, CanManageCollaborators: true, CanDelete: true}, PermissionsFor(RoleOwner))
	assert.Equal(t, Permissions{}, PermissionsFor(Role("guest")))
}
