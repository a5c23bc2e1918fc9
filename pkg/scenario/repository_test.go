package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	test_utils.RunWithDB(m, &db)
}

func TestRepositoryImpl_DuplicateScenario(t *testing.T) {
	// given
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	repo := NewRepository(db)
	entries := entry.NewRepository(db)
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Shop")
	require.NoError(t, err)
	source, err := repo.CreateScenario(ctx, Scenario{ProjectId: projectId, Name: "Growth"})
	require.NoError(t, err)
	var loanId int
	err = db.QueryRow(ctx,
		`INSERT INTO loan (project_id, kind, name, principal, monthly_payment, term_months, start_date)
		 VALUES ($1, 'borrowing', 'Van', 6000, 500, 12, '2026-01-01') RETURNING id`,
		projectId,
	).Scan(&loanId)
	require.NoError(t, err)
	_, err = entries.CreateEntry(ctx, entry.Entry{
		ProjectId:  projectId,
		ScenarioId: &source.Id,
		Type:       category.TypeIncome,
		Name:       "New client",
		Amount:     decimal.NewFromInt(800),
		Frequency:  entry.FrequencyMonthly,
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		LoanId:     &loanId,
	})
	require.NoError(t, err)

	// when
	copied, err := repo.DuplicateScenario(ctx, source.Id, Scenario{ProjectId: projectId, Name: "Growth (copy)"})
	require.NoError(t, err)

	// then
	copiedEntries, err := entries.ListEntries(ctx, projectId, &copied.Id)
	require.NoError(t, err)
	require.Len(t, copiedEntries, 1)
	assert.Equal(t, "New client", copiedEntries[0].Name)
	assert.Nil(t, copiedEntries[0].LoanId)
	loanEntries, err := entries.ListLoanEntries(ctx, projectId, loanId)
	require.NoError(t, err)
	assert.Empty(t, loanEntries)
	base, err := entries.ListEntries(ctx, projectId, nil)
	require.NoError(t, err)
	assert.Empty(t, base)

	deleted, err := repo.DeleteScenario(ctx, projectId, source.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	sourceEntries, err := entries.ListEntries(ctx, projectId, &source.Id)
	require.NoError(t, err)
	assert.Empty(t, sourceEntries)
}
