package collaborator

import (
	"context"
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	test_utils.RunWithDB(m, &db)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int, int) {
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Budget 2026")
	require.NoError(t, err)
	return ctx, NewRepository(db), projectId, ownerId
}

func TestRepositoryImpl_Collaborators(t *testing.T) {
	// given
	ctx, repo, projectId, ownerId := setupTestRepository(t)
	memberId, err := test_utils.InsertUser(ctx, db, "member@example.com")
	require.NoError(t, err)

	// when
	err = repo.AddCollaborator(ctx, projectId, memberId, RoleViewer)
	require.NoError(t, err)
	updated, err := repo.UpdateRole(ctx, projectId, memberId, RoleEditor)
	require.NoError(t, err)

	// then
	assert.True(t, updated)
	collaborators, err := repo.ListCollaborators(ctx, projectId)
	require.NoError(t, err)
	require.Len(t, collaborators, 2)
	assert.Equal(t, ownerId, collaborators[0].UserId)
	assert.Equal(t, RoleOwner, collaborators[0].Role)
	assert.Equal(t, "member@example.com", collaborators[1].Email)
	assert.Equal(t, RoleEditor, collaborators[1].Role)

	removed, err := repo.RemoveCollaborator(ctx, projectId, memberId)
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = repo.GetRole(ctx, projectId, memberId)
	assert.ErrorIs(t, err, ErrCollaboratorNotFound)
}

func TestRepositoryImpl_Invitations(t *testing.T) {
	// given
	ctx, repo, projectId, ownerId := setupTestRepository(t)
	invitation, err := repo.CreateInvitation(ctx, Invitation{
		ProjectId: projectId,
		Email:     "new@example.com",
		Role:      RoleEditor,
		Token:     "token-1",
		CreatedBy: ownerId,
	})
	require.NoError(t, err)
	inviteeId, err := test_utils.InsertUser(ctx, db, "new@example.com")
	require.NoError(t, err)

	// when
	err = repo.AcceptInvitation(ctx, invitation, inviteeId, time.Now())
	require.NoError(t, err)

	// then
	role, err := repo.GetRole(ctx, projectId, inviteeId)
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, role)
	stored, err := repo.GetInvitationByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.NotNil(t, stored.AcceptedAt)
	pending, err := repo.ListPendingInvitations(ctx, projectId)
	require.NoError(t, err)
	assert.Empty(t, pending)
	deleted, err := repo.DeleteInvitation(ctx, projectId, invitation.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
