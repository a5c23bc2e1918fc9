package category

import (
	"context"
	"testing"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	projectId       = 3
	viewerProjectId = 4
)

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub, context.Context) {
	t.Helper()
	repo := NewRepositoryStub()
	guard := collaborator.NewGuardStub().
		Grant(projectId, collaborator.RoleEditor).
		Grant(viewerProjectId, collaborator.RoleViewer)
	ctx := user.WithUser(context.Background(), user.User{Id: 1})
	return NewService(repo, guard), repo, ctx
}

func names(categories []Category) []string {
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		result = append(result, c.Name)
	}
	return result
}

func TestServiceImpl_AddCategory(t *testing.T) {
	t.Run("should append categories at sparse positions", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)

		// when
		first, err := service.AddCategory(ctx, projectId, TypeExpense, " Housing ")
		require.NoError(t, err)
		second, err := service.AddCategory(ctx, projectId, TypeExpense, "Food")
		require.NoError(t, err)

		// then
		assert.Equal(t, "Housing", first.Name)
		assert.Equal(t, 100, first.Position)
		assert.Equal(t, 200, second.Position)
	})

	t.Run("should reject duplicates ignoring case", func(t *testing.T) {
		service, _, ctx := setupService(t)
		_, err := service.AddCategory(ctx, projectId, TypeExpense, "Housing")
		require.NoError(t, err)

		_, err = service.AddCategory(ctx, projectId, TypeExpense, "housing")

		assert.ErrorIs(t, err, ErrDuplicateCategory)
	})

	t.Run("should allow the same name in the other type", func(t *testing.T) {
		service, _, ctx := setupService(t)
		_, err := service.AddCategory(ctx, projectId, TypeExpense, "Other")
		require.NoError(t, err)

		_, err = service.AddCategory(ctx, projectId, TypeIncome, "Other")

		assert.NoError(t, err)
	})

	t.Run("should require a name", func(t *testing.T) {
		service, _, ctx := setupService(t)

		_, err := service.AddCategory(ctx, projectId, TypeExpense, "  ")

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("should forbid viewers", func(t *testing.T) {
		service, _, ctx := setupService(t)

		_, err := service.AddCategory(ctx, viewerProjectId, TypeExpense, "Housing")

		assert.ErrorIs(t, err, collaborator.ErrForbidden)
	})
}

func TestServiceImpl_AddSubCategory(t *testing.T) {
	service, _, ctx := setupService(t)
	parent, err := service.AddCategory(ctx, projectId, TypeExpense, "Housing")
	require.NoError(t, err)

	t.Run("should nest under the parent with its type", func(t *testing.T) {
		sub, err := service.AddSubCategory(ctx, projectId, parent.Id, "Rent")

		require.NoError(t, err)
		require.NotNil(t, sub.ParentId)
		assert.Equal(t, parent.Id, *sub.ParentId)
		assert.Equal(t, TypeExpense, sub.Type)

		tree, err := service.GetTree(ctx, projectId, TypeExpense)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, []string{"Rent"}, names(tree[0].Children))
	})

	t.Run("should not nest deeper than two levels", func(t *testing.T) {
		sub, err := service.AddSubCategory(ctx, projectId, parent.Id, "Utilities")
		require.NoError(t, err)

		_, err = service.AddSubCategory(ctx, projectId, sub.Id, "Water")

		assert.ErrorIs(t, err, ErrTooDeep)
	})
}

func TestServiceImpl_RenameCategory(t *testing.T) {
	service, _, ctx := setupService(t)
	housing, err := service.AddCategory(ctx, projectId, TypeExpense, "Housing")
	require.NoError(t, err)
	_, err = service.AddCategory(ctx, projectId, TypeExpense, "Food")
	require.NoError(t, err)

	t.Run("should rename", func(t *testing.T) {
		renamed, err := service.RenameCategory(ctx, projectId, housing.Id, "Home")

		require.NoError(t, err)
		assert.Equal(t, "Home", renamed.Name)
	})

	t.Run("should keep own name with different case", func(t *testing.T) {
		_, err := service.RenameCategory(ctx, projectId, housing.Id, "HOME")

		assert.NoError(t, err)
	})

	t.Run("should reject a sibling's name", func(t *testing.T) {
		_, err := service.RenameCategory(ctx, projectId, housing.Id, "food")

		assert.ErrorIs(t, err, ErrDuplicateCategory)
	})
}

func TestServiceImpl_DeleteCategory(t *testing.T) {
	t.Run("should refuse when a sub-category is referenced", func(t *testing.T) {
		// given
		service, repo, ctx := setupService(t)
		parent, err := service.AddCategory(ctx, projectId, TypeExpense, "Housing")
		require.NoError(t, err)
		sub, err := service.AddSubCategory(ctx, projectId, parent.Id, "Rent")
		require.NoError(t, err)
		repo.Referenced[sub.Id] = true

		// when
		err = service.DeleteCategory(ctx, projectId, parent.Id)

		// then
		assert.ErrorIs(t, err, ErrCategoryInUse)
	})

	t.Run("should delete the category with its children", func(t *testing.T) {
		service, _, ctx := setupService(t)
		parent, err := service.AddCategory(ctx, projectId, TypeExpense, "Housing")
		require.NoError(t, err)
		_, err = service.AddSubCategory(ctx, projectId, parent.Id, "Rent")
		require.NoError(t, err)

		err = service.DeleteCategory(ctx, projectId, parent.Id)

		require.NoError(t, err)
		tree, err := service.GetTree(ctx, projectId, TypeExpense)
		require.NoError(t, err)
		assert.Empty(t, tree)
	})

	t.Run("should fail for a missing category", func(t *testing.T) {
		service, _, ctx := setupService(t)

		err := service.DeleteCategory(ctx, projectId, 99)

		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestServiceImpl_MoveCategoryAfter(t *testing.T) {
	setup := func(t *testing.T) (*ServiceImpl, *RepositoryStub, context.Context, []Category) {
		service, repo, ctx := setupService(t)
		var created []Category
		for _, name := range []string{"A", "B", "C"} {
			c, err := service.AddCategory(ctx, projectId, TypeExpense, name)
			require.NoError(t, err)
			created = append(created, c)
		}
		return service, repo, ctx, created
	}

	t.Run("should move to the front", func(t *testing.T) {
		service, _, ctx, created := setup(t)

		tree, err := service.MoveCategoryAfter(ctx, projectId, created[2].Id, 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, names(tree))
		assert.Equal(t, 50, tree[0].Position)
	})

	t.Run("should move between two siblings using the midpoint", func(t *testing.T) {
		service, _, ctx, created := setup(t)

		tree, err := service.MoveCategoryAfter(ctx, projectId, created[0].Id, created[1].Id)

		require.NoError(t, err)
		assert.Equal(t, []string{"B", "A", "C"}, names(tree))
		assert.Equal(t, 250, tree[1].Position)
	})

	t.Run("should move to the end", func(t *testing.T) {
		service, _, ctx, created := setup(t)

		tree, err := service.MoveCategoryAfter(ctx, projectId, created[0].Id, created[2].Id)

		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C", "A"}, names(tree))
		assert.Equal(t, 400, tree[2].Position)
	})

	t.Run("should renumber siblings when no gap is left", func(t *testing.T) {
		// given
		service, repo, ctx, created := setup(t)
		_, err := repo.UpdatePosition(ctx, projectId, created[0].Id, 1)
		require.NoError(t, err)
		_, err = repo.UpdatePosition(ctx, projectId, created[1].Id, 2)
		require.NoError(t, err)

		// when
		tree, err := service.MoveCategoryAfter(ctx, projectId, created[2].Id, created[0].Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C", "B"}, names(tree))
		assert.Equal(t, []int{100, 200, 300}, []int{tree[0].Position, tree[1].Position, tree[2].Position})
	})

	t.Run("should reject an unknown preceding category", func(t *testing.T) {
		service, _, ctx, created := setup(t)

		_, err := service.MoveCategoryAfter(ctx, projectId, created[0].Id, 999)

		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestServiceImpl_SeedDefaults(t *testing.T) {
	service, _, ctx := setupService(t)

	err := service.SeedDefaults(ctx, projectId)

	require.NoError(t, err)
	expenses, err := service.GetTree(ctx, projectId, TypeExpense)
	require.NoError(t, err)
	assert.Len(t, expenses, len(defaultTree[TypeExpense]))
	assert.Equal(t, "Housing", expenses[0].Name)
	assert.Equal(t, []string{"Rent", "Utilities", "Maintenance"}, names(expenses[0].Children))
	income, err := service.GetTree(ctx, projectId, TypeIncome)
	require.NoError(t, err)
	assert.Len(t, income, len(defaultTree[TypeIncome]))
}
