package consolidated

import (
	"testing"
	"time"

	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/shopspring/decimal"
)

var january = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
var february = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func month(start time.Time, income, expense, balance float64) forecast.Month {
	m := zeroMonth(start)
	m.PlannedIncome = decimal.NewFromFloat(income)
	m.PlannedExpense = decimal.NewFromFloat(expense)
	m.PlannedNet = m.PlannedIncome.Sub(m.PlannedExpense)
	m.Balance = decimal.NewFromFloat(balance)
	return m
}

func TestCsvRendererImpl_Render(t1 *testing.T) {
	type args struct {
		view View
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "Render with months and projects",
			args: args{
				view: View{
					From:           january,
					To:             february.AddDate(0, 1, -1),
					Currency:       "PLN",
					OpeningBalance: decimal.NewFromInt(1000),
					Months: []forecast.Month{
						month(january, 5000, 3765.5, 2234.5),
						month(february, 5000, 4000, 3234.5),
					},
					Totals: month(january, 10000, 7765.5, 3234.5),
					Projects: []ProjectTotal{
						{ProjectId: 1, Name: "Household", OpeningBalance: decimal.NewFromInt(1000), Totals: month(january, 10000, 7765.5, 3234.5)},
					},
				},
			},
			want: "Currency,PLN\n" +
				"Opening balance,\"1,000.00\"\n" +
				"Month,Planned income,Planned expense,Actual income,Actual expense,Planned net,Actual net,Balance\n" +
				"01/2026,\"5,000.00\",\"3,765.50\",0.00,0.00,\"1,234.50\",0.00,\"2,234.50\"\n" +
				"02/2026,\"5,000.00\",\"4,000.00\",0.00,0.00,\"1,000.00\",0.00,\"3,234.50\"\n" +
				"Total,\"10,000.00\",\"7,765.50\",0.00,0.00,\"2,234.50\",0.00,\"3,234.50\"\n" +
				"Project,Opening balance,Planned net,Actual net,Closing balance\n" +
				"Household,\"1,000.00\",\"2,234.50\",0.00,\"3,234.50\"\n",
		},
		{
			name: "Render negative amounts",
			args: args{
				view: View{
					From:           january,
					To:             january.AddDate(0, 1, -1),
					Currency:       "EUR",
					OpeningBalance: decimal.Zero,
					Months:         []forecast.Month{month(january, 0, 250, -250)},
					Totals:         month(january, 0, 250, -250),
					Projects:       []ProjectTotal{},
				},
			},
			want: "Currency,EUR\n" +
				"Opening balance,0.00\n" +
				"Month,Planned income,Planned expense,Actual income,Actual expense,Planned net,Actual net,Balance\n" +
				"01/2026,0.00,250.00,0.00,0.00,-250.00,0.00,-250.00\n" +
				"Total,0.00,250.00,0.00,0.00,-250.00,0.00,-250.00\n" +
				"Project,Opening balance,Planned net,Actual net,Closing balance\n",
		},
	}
	for _, tt := range tests {
		t1.Run(tt.name, func(t1 *testing.T) {
			t := &CsvRendererImpl{}
			got, err := t.Render(tt.args.view)
			if err != nil {
				t1.Errorf("Render() error = %v", err)
				return
			}
			if got != tt.want {
				t1.Errorf("Render() got = %v, want %v", got, tt.want)
			}
		})
	}
}
