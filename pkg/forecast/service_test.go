package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/cache"
	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/test_utils"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/cashaccount"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	projectId  = 7
	scenarioId = 70
)

type fixture struct {
	service   *ServiceImpl
	entries   *entry.ServiceImpl
	entryRepo *entry.RepositoryStub
	accounts  *cashaccount.ServiceImpl
	ctx       context.Context
	// rebuild wires a forecast service over another entry service, sharing
	// the cache and the event bus of the fixture.
	rebuild func(entries entry.Service) *ServiceImpl
}

// writingEntries runs write once, after the first list returned, as a
// concurrent request committing between the read and the cache store.
type writingEntries struct {
	entry.Service
	write func()
}

func (w *writingEntries) ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]entry.Entry, error) {
	entries, err := w.Service.ListEntries(ctx, projectId, scenarioId)
	if w.write != nil {
		write := w.write
		w.write = nil
		write()
	}
	return entries, err
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	guard := collaborator.NewGuardStub().Grant(projectId, collaborator.RoleEditor)
	bus := event_bus.NewEventBus()
	scenarioExists := func(ctx context.Context, projectId int, id int) error {
		if id == scenarioId {
			return nil
		}
		return rest.Invalid("scenarioId", "Scenario does not exist")
	}
	f := &fixture{entryRepo: entry.NewRepositoryStub(), ctx: test_utils.ContextWithUser(context.Background(), 1)}
	categories := category.NewService(category.NewRepositoryStub(), guard)
	f.accounts = cashaccount.NewService(cashaccount.NewRepositoryStub(), guard, bus)
	f.entries = entry.NewService(f.entryRepo, guard, categories, f.accounts, scenarioExists, nil, bus)
	actuals := actual.NewService(actual.NewRepositoryStub(), guard, f.entries, f.accounts, bus)

	forecasts, err := cache.NewProjectCache[Forecast](100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(forecasts.Close)
	clock := &utils.FixedClock{At: day(2026, 1, 10)}
	f.rebuild = func(entries entry.Service) *ServiceImpl {
		return NewService(guard, entries, actuals, f.accounts, scenarioExists, forecasts, clock)
	}
	f.service = f.rebuild(f.entries)
	f.service.Subscribe(bus)
	return f
}

func salary(start time.Time) entry.Entry {
	return entry.Entry{
		ProjectId: projectId,
		Type:      category.TypeIncome,
		Name:      "Salary",
		Amount:    amount("3000"),
		Frequency: entry.FrequencyMonthly,
		StartDate: start,
	}
}

func TestServiceImpl_Forecast(t *testing.T) {
	t.Run("should start from the account balances before the first month", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.accounts.CreateAccount(f.ctx, cashaccount.CashAccount{
			ProjectId: projectId, Name: "Main", InitialBalance: amount("500"), InitialBalanceDate: day(2025, 12, 1),
		})
		require.NoError(t, err)
		_, err = f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 1)))
		require.NoError(t, err)

		// when
		result, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 15), day(2026, 3, 10), nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, day(2026, 1, 1), result.From)
		assert.Equal(t, day(2026, 3, 31), result.To)
		assertAmount(t, "500", result.OpeningBalance)
		require.Len(t, result.Months, 3)
		assertAmount(t, "9000", result.Totals.PlannedIncome)
		assertAmount(t, "6500", result.Totals.Balance)
	})

	t.Run("should add the scenario entries to the base plan", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 1)))
		require.NoError(t, err)
		bonus := salary(day(2026, 2, 1))
		bonus.Name = "Bonus"
		bonus.Frequency = entry.FrequencyOnce
		id := scenarioId
		bonus.ScenarioId = &id
		_, err = f.entries.CreateEntry(f.ctx, bonus)
		require.NoError(t, err)

		// when
		base, baseErr := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 3, 1), nil)
		withScenario, scenarioErr := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 3, 1), &id)

		// then
		require.NoError(t, baseErr)
		require.NoError(t, scenarioErr)
		assertAmount(t, "9000", base.Totals.PlannedIncome)
		assertAmount(t, "12000", withScenario.Totals.PlannedIncome)
	})

	t.Run("should serve cached results until the project changes", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 1)))
		require.NoError(t, err)
		first, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)

		// when
		_, err = f.entryRepo.CreateEntry(f.ctx, salary(day(2026, 1, 2)))
		require.NoError(t, err)
		cached, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)
		_, err = f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 3)))
		require.NoError(t, err)
		refreshed, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)

		// then
		assertAmount(t, "3000", first.Totals.PlannedIncome)
		assertAmount(t, "3000", cached.Totals.PlannedIncome)
		assertAmount(t, "9000", refreshed.Totals.PlannedIncome)
	})

	t.Run("should not cache a result computed before a concurrent write", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 1)))
		require.NoError(t, err)
		racing := &writingEntries{Service: f.entries, write: func() {
			_, err := f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 2)))
			require.NoError(t, err)
		}}
		service := f.rebuild(racing)

		// when
		during, err := service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)
		after, err := service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)

		// then
		assertAmount(t, "3000", during.Totals.PlannedIncome)
		assertAmount(t, "6000", after.Totals.PlannedIncome)
	})

	t.Run("should invalidate when the writer's context is cancelled after the write", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.entries.CreateEntry(f.ctx, salary(day(2026, 1, 1)))
		require.NoError(t, err)
		first, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)
		cancelled, cancel := context.WithCancel(f.ctx)
		cancel()

		// when
		_, err = f.entries.CreateEntry(cancelled, salary(day(2026, 1, 2)))
		require.NoError(t, err)
		refreshed, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), nil)
		require.NoError(t, err)

		// then
		assertAmount(t, "3000", first.Totals.PlannedIncome)
		assertAmount(t, "6000", refreshed.Totals.PlannedIncome)
	})

	t.Run("should reject inverted and overlong ranges", func(t *testing.T) {
		f := setupService(t)

		_, invertedErr := f.service.Forecast(f.ctx, projectId, day(2026, 3, 1), day(2026, 1, 1), nil)
		_, longErr := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2036, 1, 1), nil)

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, invertedErr, &validationErr)
		assert.ErrorAs(t, longErr, &validationErr)
	})

	t.Run("should check access before the cache", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Forecast(f.ctx, projectId+1, day(2026, 1, 1), day(2026, 1, 31), nil)

		assert.True(t, errors.Is(err, collaborator.ErrForbidden))
	})

	t.Run("should reject unknown scenarios", func(t *testing.T) {
		f := setupService(t)
		unknown := 71

		_, err := f.service.Forecast(f.ctx, projectId, day(2026, 1, 1), day(2026, 1, 31), &unknown)

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
