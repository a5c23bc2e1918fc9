package actual

import (
	"context"
	"testing"

	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	test_utils.RunWithDB(m, &db)
}

func TestRepositoryImpl_ActualsWithPayments(t *testing.T) {
	// given
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	repo := NewRepository(db)
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Household")
	require.NoError(t, err)
	salary, err := entry.NewRepository(db).CreateEntry(ctx, entry.Entry{
		ProjectId: projectId,
		Type:      category.TypeIncome,
		Name:      "Salary",
		Amount:    amount("3000"),
		Frequency: entry.FrequencyMonthly,
		StartDate: day(2026, 1, 1),
	})
	require.NoError(t, err)

	// when
	created, err := repo.CreateActual(ctx, Actual{
		ProjectId: projectId,
		EntryId:   salary.Id,
		Date:      day(2026, 1, 31),
		Amount:    amount("3000"),
		Payments: []Payment{
			{Date: day(2026, 1, 31), Amount: amount("2000"), Kind: KindStandard},
			{Date: day(2026, 2, 2), Amount: amount("1000"), Kind: KindStandard},
		},
	})
	require.NoError(t, err)

	// then
	loaded, err := repo.GetActual(ctx, projectId, created.Id)
	require.NoError(t, err)
	require.Len(t, loaded.Payments, 2)
	assert.Equal(t, StatusPaid, loaded.Status())

	to := day(2026, 1, 31)
	lines, err := repo.ListPaymentLines(ctx, projectId, nil, &to)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, category.TypeIncome, lines[0].EntryType)
	assert.Equal(t, salary.Id, lines[0].EntryId)

	deleted, err := repo.DeletePayment(ctx, created.Id, loaded.Payments[1].Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	actuals, err := repo.ListActuals(ctx, projectId, Filter{EntryId: &salary.Id})
	require.NoError(t, err)
	require.Len(t, actuals, 1)
	assert.Equal(t, StatusPartial, actuals[0].Status())

	_, err = repo.GetActual(ctx, projectId+1, created.Id)
	assert.ErrorIs(t, err, ErrActualNotFound)
}
