package scenario

import (
	"context"
	"testing"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectId = 4

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub, *[]event_bus.ScenarioDeletedPayload, context.Context) {
	t.Helper()
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	deleted := &[]event_bus.ScenarioDeletedPayload{}
	event_bus.SubscribeTyped(bus, event_bus.ScenarioDeleted, func(e event_bus.Typed[event_bus.ScenarioDeletedPayload]) error {
		*deleted = append(*deleted, e.Payload)
		return nil
	})
	guard := collaborator.NewGuardStub().Grant(projectId, collaborator.RoleEditor)
	return NewService(repo, guard, bus), repo, deleted, test_utils.ContextWithUser(context.Background(), 1)
}

func TestServiceImpl_CreateScenario(t *testing.T) {
	t.Run("should trim and store the scenario", func(t *testing.T) {
		service, _, _, ctx := setupService(t)

		created, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "  Pessimistic "})

		require.NoError(t, err)
		assert.Equal(t, "Pessimistic", created.Name)
		scenarios, err := service.ListScenarios(ctx, projectId)
		require.NoError(t, err)
		assert.Len(t, scenarios, 1)
	})

	t.Run("should require a name", func(t *testing.T) {
		service, _, _, ctx := setupService(t)

		_, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: " "})

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "name", validationErr.Field)
	})

	t.Run("should forbid projects without access", func(t *testing.T) {
		service, _, _, ctx := setupService(t)

		_, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId + 1, Name: "Other"})

		assert.ErrorIs(t, err, collaborator.ErrForbidden)
	})
}

func TestServiceImpl_Duplicate(t *testing.T) {
	t.Run("should copy the entries under a derived name", func(t *testing.T) {
		// given
		service, repo, _, ctx := setupService(t)
		source, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "Growth", Description: "Two new clients"})
		require.NoError(t, err)
		repo.Entries[source.Id] = 3

		// when
		copied, err := service.Duplicate(ctx, projectId, source.Id, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Growth (copy)", copied.Name)
		assert.Equal(t, "Two new clients", copied.Description)
		assert.NotEqual(t, source.Id, copied.Id)
		assert.Equal(t, 3, repo.Entries[copied.Id])
	})

	t.Run("should keep an explicit name", func(t *testing.T) {
		service, _, _, ctx := setupService(t)
		source, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "Growth"})
		require.NoError(t, err)

		copied, err := service.Duplicate(ctx, projectId, source.Id, "Growth 2027")

		require.NoError(t, err)
		assert.Equal(t, "Growth 2027", copied.Name)
	})

	t.Run("should fail for an unknown scenario", func(t *testing.T) {
		service, _, _, ctx := setupService(t)

		_, err := service.Duplicate(ctx, projectId, 42, "")

		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})
}

func TestServiceImpl_DeleteScenario(t *testing.T) {
	service, _, deleted, ctx := setupService(t)
	created, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "Growth"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteScenario(ctx, projectId, created.Id))

	assert.Equal(t, []event_bus.ScenarioDeletedPayload{{ProjectId: projectId, ScenarioId: created.Id}}, *deleted)
	assert.ErrorIs(t, service.DeleteScenario(ctx, projectId, created.Id), ErrScenarioNotFound)
}

func TestServiceImpl_Exists(t *testing.T) {
	service, _, _, ctx := setupService(t)
	created, err := service.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "Growth"})
	require.NoError(t, err)

	assert.NoError(t, service.Exists(ctx, projectId, created.Id))
	var validationErr *rest.ValidationError
	assert.ErrorAs(t, service.Exists(ctx, projectId+1, created.Id), &validationErr)
}
