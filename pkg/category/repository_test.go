package category

import (
	"context"
	"testing"

	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	test_utils.RunWithDB(m, &db)
}

func TestRepositoryImpl_Categories(t *testing.T) {
	// given
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	repo := NewRepository(db)
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Household")
	require.NoError(t, err)

	// when
	parent, err := repo.CreateCategory(ctx, Category{ProjectId: projectId, Type: TypeExpense, Name: "Housing", Position: 200})
	require.NoError(t, err)
	child, err := repo.CreateCategory(ctx, Category{ProjectId: projectId, Type: TypeExpense, ParentId: &parent.Id, Name: "Rent", Position: 100})
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, Category{ProjectId: projectId, Type: TypeIncome, Name: "Salary", Position: 100})
	require.NoError(t, err)

	// then
	expenses, err := repo.ListCategories(ctx, projectId, TypeExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Rent", expenses[0].Name)
	require.NotNil(t, expenses[0].ParentId)
	assert.Equal(t, parent.Id, *expenses[0].ParentId)

	count, err := repo.CountEntryReferences(ctx, projectId, []int{parent.Id, child.Id})
	require.NoError(t, err)
	assert.Zero(t, count)

	deleted, err := repo.DeleteCategory(ctx, projectId, parent.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.GetCategory(ctx, projectId, child.Id)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
