package cashaccount

import (
	"context"
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	test_utils.RunWithDB(m, &db)
}

// insertEntry stores a bare budget entry of entryType.
func insertEntry(t *testing.T, ctx context.Context, projectId int, entryType string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO budget_entry (project_id, type, name, amount, frequency, start_date)
		 VALUES ($1, $2, $2, 100, 'monthly', '2025-01-01') RETURNING id`,
		projectId, entryType,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// insertPayment stores an actual of entryId holding a single payment.
func insertPayment(t *testing.T, ctx context.Context, projectId, entryId, accountId int, date time.Time, value string, kind string) {
	t.Helper()
	var actualId int
	err := db.QueryRow(ctx,
		`INSERT INTO actual (project_id, entry_id, date, amount) VALUES ($1, $2, $3, $4) RETURNING id`,
		projectId, entryId, date, value,
	).Scan(&actualId)
	require.NoError(t, err)
	_, err = db.Exec(ctx,
		`INSERT INTO payment (actual_id, date, amount, cash_account_id, kind) VALUES ($1, $2, $3, $4, $5)`,
		actualId, date, value, accountId, kind,
	)
	require.NoError(t, err)
}

func TestRepositoryImpl_NetMovement(t *testing.T) {
	// given
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	repo := NewRepository(db)
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Household")
	require.NoError(t, err)
	checking, err := repo.CreateAccount(ctx, CashAccount{
		ProjectId: projectId, Name: "Main", InitialBalance: decimal.NewFromInt(1000), InitialBalanceDate: date(2026, 1, 1),
	})
	require.NoError(t, err)
	savings, err := repo.CreateAccount(ctx, CashAccount{
		ProjectId: projectId, Name: "Savings", InitialBalanceDate: date(2026, 1, 1),
	})
	require.NoError(t, err)
	salary := insertEntry(t, ctx, projectId, "income")
	insurance := insertEntry(t, ctx, projectId, "expense")

	insertPayment(t, ctx, projectId, salary, checking.Id, date(2026, 1, 1), "1000", "standard")
	insertPayment(t, ctx, projectId, insurance, checking.Id, date(2026, 1, 31), "300", "standard")
	insertPayment(t, ctx, projectId, insurance, checking.Id, date(2026, 1, 15), "50", "provision")
	insertPayment(t, ctx, projectId, insurance, checking.Id, date(2026, 1, 20), "200", "payout")
	insertPayment(t, ctx, projectId, salary, checking.Id, date(2025, 12, 31), "700", "standard")
	insertPayment(t, ctx, projectId, salary, checking.Id, date(2026, 2, 1), "500", "standard")
	insertPayment(t, ctx, projectId, salary, savings.Id, date(2026, 1, 10), "400", "standard")

	t.Run("should count income positive and expense and provision negative, skipping payouts", func(t *testing.T) {
		// when
		movement, err := repo.NetMovement(ctx, checking.Id, date(2026, 1, 1), date(2026, 1, 31))

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(650).Equal(movement), "got %s", movement)
	})

	t.Run("should include payments dated on both ends of the range", func(t *testing.T) {
		// when
		first, err := repo.NetMovement(ctx, checking.Id, date(2026, 1, 1), date(2026, 1, 1))
		require.NoError(t, err)
		last, err := repo.NetMovement(ctx, checking.Id, date(2026, 1, 31), date(2026, 1, 31))
		require.NoError(t, err)

		// then
		assert.True(t, decimal.NewFromInt(1000).Equal(first), "got %s", first)
		assert.True(t, decimal.NewFromInt(-300).Equal(last), "got %s", last)
	})

	t.Run("should keep accounts apart", func(t *testing.T) {
		// when
		movement, err := repo.NetMovement(ctx, savings.Id, date(2026, 1, 1), date(2026, 1, 31))

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(400).Equal(movement), "got %s", movement)
	})

	t.Run("should count every payment referencing the account", func(t *testing.T) {
		// when
		count, err := repo.CountPayments(ctx, checking.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, 6, count)
	})
}

func TestRepositoryImpl_Accounts(t *testing.T) {
	// given
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	repo := NewRepository(db)
	ownerId, err := test_utils.InsertUser(ctx, db, "owner@example.com")
	require.NoError(t, err)
	projectId, err := test_utils.InsertProject(ctx, db, ownerId, "Household")
	require.NoError(t, err)
	created, err := repo.CreateAccount(ctx, CashAccount{
		ProjectId: projectId, Name: "Main", Bank: "Bank", InitialBalance: decimal.RequireFromString("12.50"), InitialBalanceDate: date(2026, 1, 1),
	})
	require.NoError(t, err)

	// when
	created.Archived = true
	updated, err := repo.UpdateAccount(ctx, created)
	require.NoError(t, err)
	active, err := repo.ListAccounts(ctx, projectId, false)
	require.NoError(t, err)
	all, err := repo.ListAccounts(ctx, projectId, true)
	require.NoError(t, err)
	_, otherProjectErr := repo.GetAccount(ctx, projectId+1, created.Id)
	deleted, err := repo.DeleteAccount(ctx, projectId, created.Id)
	require.NoError(t, err)
	_, goneErr := repo.GetAccount(ctx, projectId, created.Id)

	// then
	assert.True(t, updated)
	assert.Empty(t, active)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)
	assert.True(t, decimal.RequireFromString("12.50").Equal(all[0].InitialBalance))
	assert.True(t, all[0].InitialBalanceDate.Equal(date(2026, 1, 1)))
	assert.ErrorIs(t, otherProjectErr, ErrAccountNotFound)
	assert.True(t, deleted)
	assert.ErrorIs(t, goneErr, ErrAccountNotFound)
}
