package consolidated

import (
	"errors"
	"time"

	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/shopspring/decimal"
)

var (
	ErrMixedCurrencies = errors.New("projects use different currencies")
	ErrNoProjects      = errors.New("no projects to consolidate")
)

type ProjectTotal struct {
	ProjectId      int
	Name           string
	OpeningBalance decimal.Decimal
	Totals         forecast.Month
}

// View is the sum of the forecasts of several projects over the same months.
type View struct {
	From           time.Time
	To             time.Time
	Currency       string
	OpeningBalance decimal.Decimal
	Months         []forecast.Month
	Totals         forecast.Month
	Projects       []ProjectTotal
}

func addMonth(into *forecast.Month, m forecast.Month) {
	into.PlannedIncome = into.PlannedIncome.Add(m.PlannedIncome)
	into.PlannedExpense = into.PlannedExpense.Add(m.PlannedExpense)
	into.ActualIncome = into.ActualIncome.Add(m.ActualIncome)
	into.ActualExpense = into.ActualExpense.Add(m.ActualExpense)
	into.PlannedNet = into.PlannedNet.Add(m.PlannedNet)
	into.ActualNet = into.ActualNet.Add(m.ActualNet)
	into.Balance = into.Balance.Add(m.Balance)
}

func zeroMonth(start time.Time) forecast.Month {
	return forecast.Month{
		Month:          start,
		PlannedIncome:  decimal.Zero,
		PlannedExpense: decimal.Zero,
		ActualIncome:   decimal.Zero,
		ActualExpense:  decimal.Zero,
		PlannedNet:     decimal.Zero,
		ActualNet:      decimal.Zero,
		Balance:        decimal.Zero,
	}
}

// combine sums forecasts covering the same range. Names are given in the
// order of forecasts.
func combine(currency string, names []string, forecasts []forecast.Forecast) View {
	first := forecasts[0]
	view := View{
		From:           first.From,
		To:             first.To,
		Currency:       currency,
		OpeningBalance: decimal.Zero,
		Months:         make([]forecast.Month, len(first.Months)),
		Totals:         zeroMonth(first.From),
		Projects:       make([]ProjectTotal, 0, len(forecasts)),
	}
	for i, m := range first.Months {
		view.Months[i] = zeroMonth(m.Month)
	}
	for i, f := range forecasts {
		view.OpeningBalance = view.OpeningBalance.Add(f.OpeningBalance)
		for j, m := range f.Months {
			addMonth(&view.Months[j], m)
		}
		addMonth(&view.Totals, f.Totals)
		view.Projects = append(view.Projects, ProjectTotal{
			ProjectId:      f.ProjectId,
			Name:           names[i],
			OpeningBalance: f.OpeningBalance,
			Totals:         f.Totals,
		})
	}
	return view
}
