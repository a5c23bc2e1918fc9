package consolidated

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/cashplan/cashplan/pkg/project"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectsStub struct {
	project.Service
	projects map[int]project.Project
}

func (s *projectsStub) ListProjects(ctx context.Context, includeArchived bool) ([]project.Project, error) {
	result := make([]project.Project, 0)
	for id := 1; id <= len(s.projects); id++ {
		if p, ok := s.projects[id]; ok && (includeArchived || !p.Archived) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *projectsStub) GetProject(ctx context.Context, projectId int) (project.Project, error) {
	p, ok := s.projects[projectId]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

type forecastsStub struct {
	mu        sync.Mutex
	calls     []int
	forecasts map[int]forecast.Forecast
	err       error
}

func (s *forecastsStub) Forecast(ctx context.Context, projectId int, from, to time.Time, scenarioId *int) (forecast.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, projectId)
	if s.err != nil {
		return forecast.Forecast{}, s.err
	}
	return s.forecasts[projectId], nil
}

func projectForecast(projectId int, opening int64, nets ...int64) forecast.Forecast {
	f := forecast.Forecast{
		ProjectId:      projectId,
		From:           january,
		To:             january.AddDate(0, len(nets), -1),
		OpeningBalance: decimal.NewFromInt(opening),
		Totals:         zeroMonth(january),
	}
	balance := f.OpeningBalance
	for i, net := range nets {
		m := zeroMonth(january.AddDate(0, i, 0))
		m.PlannedIncome = decimal.NewFromInt(net)
		m.PlannedNet = decimal.NewFromInt(net)
		balance = balance.Add(m.PlannedNet)
		m.Balance = balance
		f.Months = append(f.Months, m)
		addMonth(&f.Totals, m)
	}
	f.Totals.Balance = balance
	return f
}

func setupService() (*ServiceImpl, *forecastsStub) {
	projects := &projectsStub{projects: map[int]project.Project{
		1: {Id: 1, Name: "Household", Currency: "PLN"},
		2: {Id: 2, Name: "Company", Currency: "PLN"},
		3: {Id: 3, Name: "Holiday", Currency: "EUR"},
		4: {Id: 4, Name: "Old flat", Currency: "PLN", Archived: true},
	}}
	forecasts := &forecastsStub{forecasts: map[int]forecast.Forecast{
		1: projectForecast(1, 1000, 200, -100),
		2: projectForecast(2, 500, 50, 50),
		3: projectForecast(3, 10, 1, 1),
		4: projectForecast(4, 0, 0, 0),
	}}
	return NewService(projects, forecasts), forecasts
}

func TestServiceImpl_Consolidate(t *testing.T) {
	t.Run("should sum the forecasts month by month", func(t *testing.T) {
		// given
		service, _ := setupService()

		// when
		view, err := service.Consolidate(context.Background(), []int{1, 2}, january, february)

		// then
		require.NoError(t, err)
		assert.Equal(t, "PLN", view.Currency)
		assert.True(t, decimal.NewFromInt(1500).Equal(view.OpeningBalance))
		require.Len(t, view.Months, 2)
		assert.True(t, decimal.NewFromInt(250).Equal(view.Months[0].PlannedNet))
		assert.True(t, decimal.NewFromInt(1750).Equal(view.Months[0].Balance))
		assert.True(t, decimal.NewFromInt(-50).Equal(view.Months[1].PlannedNet))
		assert.True(t, decimal.NewFromInt(1700).Equal(view.Months[1].Balance))
		assert.True(t, decimal.NewFromInt(1700).Equal(view.Totals.Balance))
		require.Len(t, view.Projects, 2)
		assert.Equal(t, "Household", view.Projects[0].Name)
		assert.Equal(t, "Company", view.Projects[1].Name)
		assert.True(t, decimal.NewFromInt(600).Equal(view.Projects[1].Totals.Balance))
	})

	t.Run("should use all active projects when none are given", func(t *testing.T) {
		// given
		_, forecasts := setupService()
		projects := &projectsStub{projects: map[int]project.Project{
			1: {Id: 1, Name: "Household", Currency: "PLN"},
			2: {Id: 2, Name: "Company", Currency: "PLN"},
			3: {Id: 3, Name: "Old flat", Currency: "PLN", Archived: true},
		}}
		service := NewService(projects, forecasts)

		// when
		view, err := service.Consolidate(context.Background(), nil, january, february)

		// then
		require.NoError(t, err)
		assert.Len(t, view.Projects, 2)
		assert.ElementsMatch(t, []int{1, 2}, forecasts.calls)
	})

	t.Run("should compute each project once", func(t *testing.T) {
		// given
		service, forecasts := setupService()

		// when
		view, err := service.Consolidate(context.Background(), []int{2, 1, 2}, january, february)

		// then
		require.NoError(t, err)
		assert.Len(t, view.Projects, 2)
		assert.ElementsMatch(t, []int{1, 2}, forecasts.calls)
	})

	t.Run("should reject mixed currencies", func(t *testing.T) {
		// given
		service, _ := setupService()

		// when
		_, err := service.Consolidate(context.Background(), []int{1, 3}, january, february)

		// then
		assert.ErrorIs(t, err, ErrMixedCurrencies)
	})

	t.Run("should fail for an unknown project", func(t *testing.T) {
		// given
		service, _ := setupService()

		// when
		_, err := service.Consolidate(context.Background(), []int{1, 99}, january, february)

		// then
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
	})

	t.Run("should fail when there is nothing to consolidate", func(t *testing.T) {
		// given
		service := NewService(&projectsStub{projects: map[int]project.Project{}}, &forecastsStub{})

		// when
		_, err := service.Consolidate(context.Background(), nil, january, february)

		// then
		assert.ErrorIs(t, err, ErrNoProjects)
	})

	t.Run("should propagate forecast errors", func(t *testing.T) {
		// given
		service, forecasts := setupService()
		failure := errors.New("boom")
		forecasts.err = failure

		// when
		_, err := service.Consolidate(context.Background(), []int{1, 2}, january, february)

		// then
		assert.ErrorIs(t, err, failure)
	})
}
