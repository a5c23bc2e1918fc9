package forecast

import (
	"time"

	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
)

// MaxMonths bounds the length of a forecast.
const MaxMonths = 120

type Month struct {
	Month          time.Time
	PlannedIncome  decimal.Decimal
	PlannedExpense decimal.Decimal
	ActualIncome   decimal.Decimal
	ActualExpense  decimal.Decimal
	PlannedNet     decimal.Decimal
	ActualNet      decimal.Decimal
	// Balance is the expected cash at the end of the month.
	Balance decimal.Decimal
}

type Forecast struct {
	ProjectId      int
	ScenarioId     *int
	From           time.Time
	To             time.Time
	OpeningBalance decimal.Decimal
	Months         []Month
	// Totals sums the months; its Balance is the closing balance.
	Totals Month
}

func newMonth(start time.Time) Month {
	return Month{
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

// monthIndex is the position of d among the months starting at from.
func monthIndex(from, d time.Time) int {
	return (d.Year()-from.Year())*12 + int(d.Month()) - int(from.Month())
}

// Build lays out the months of [from, to]. from is the first day of a month
// and to the last day of a month. Months starting after today are settled
// with their planned net, all others with their actual net.
func Build(from, to, today time.Time, opening decimal.Decimal, entries []entry.Entry, lines []actual.PaymentLine) ([]Month, Month) {
	count := monthIndex(from, to) + 1
	months := make([]Month, count)
	for i := range months {
		months[i] = newMonth(from.AddDate(0, i, 0))
	}

	for _, e := range entries {
		for _, o := range e.Occurrences(from, to) {
			m := &months[monthIndex(from, o.Date)]
			if e.Type == category.TypeIncome {
				m.PlannedIncome = m.PlannedIncome.Add(o.Amount)
			} else {
				m.PlannedExpense = m.PlannedExpense.Add(o.Amount)
			}
		}
	}

	for _, line := range lines {
		if line.Kind == actual.KindPayout || line.Date.Before(from) || line.Date.After(to) {
			continue
		}
		m := &months[monthIndex(from, line.Date)]
		if line.EntryType == category.TypeIncome {
			m.ActualIncome = m.ActualIncome.Add(line.Amount)
		} else {
			m.ActualExpense = m.ActualExpense.Add(line.Amount)
		}
	}

	totals := newMonth(from)
	balance := opening
	today = utils.TruncateDay(today)
	for i := range months {
		m := &months[i]
		m.PlannedNet = m.PlannedIncome.Sub(m.PlannedExpense)
		m.ActualNet = m.ActualIncome.Sub(m.ActualExpense)
		if m.Month.After(today) {
			balance = balance.Add(m.PlannedNet)
		} else {
			balance = balance.Add(m.ActualNet)
		}
		m.Balance = balance

		totals.PlannedIncome = totals.PlannedIncome.Add(m.PlannedIncome)
		totals.PlannedExpense = totals.PlannedExpense.Add(m.PlannedExpense)
		totals.ActualIncome = totals.ActualIncome.Add(m.ActualIncome)
		totals.ActualExpense = totals.ActualExpense.Add(m.ActualExpense)
	}
	totals.PlannedNet = totals.PlannedIncome.Sub(totals.PlannedExpense)
	totals.ActualNet = totals.ActualIncome.Sub(totals.ActualExpense)
	totals.Balance = balance
	return months, totals
}

// Range normalizes [from, to] to whole months.
func Range(from, to time.Time) (time.Time, time.Time) {
	start := utils.MonthStart(from)
	end := utils.MonthStart(to).AddDate(0, 1, -1)
	return start, end
}
