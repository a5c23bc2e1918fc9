package consolidated

import (
	"bytes"
	"encoding/csv"

	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

var monthHeader = []string{"Month", "Planned income", "Planned expense", "Actual income", "Actual expense", "Planned net", "Actual net", "Balance"}

func (t *CsvRendererImpl) Render(view View) (string, error) {
	data := make([][]string, 0, len(view.Months)+len(view.Projects)+6)
	data = append(data,
		[]string{"Currency", view.Currency},
		[]string{"Opening balance", formatAmount(view.OpeningBalance)},
		monthHeader,
	)
	for _, m := range view.Months {
		data = append(data, monthRow(m.Month.Format("01/2006"), m))
	}
	data = append(data, monthRow("Total", view.Totals))

	data = append(data, []string{"Project", "Opening balance", "Planned net", "Actual net", "Closing balance"})
	for _, p := range view.Projects {
		data = append(data, []string{
			p.Name,
			formatAmount(p.OpeningBalance),
			formatAmount(p.Totals.PlannedNet),
			formatAmount(p.Totals.ActualNet),
			formatAmount(p.Totals.Balance),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func monthRow(label string, m forecast.Month) []string {
	return []string{
		label,
		formatAmount(m.PlannedIncome),
		formatAmount(m.PlannedExpense),
		formatAmount(m.ActualIncome),
		formatAmount(m.ActualExpense),
		formatAmount(m.PlannedNet),
		formatAmount(m.ActualNet),
		formatAmount(m.Balance),
	}
}

// formatAmount renders thousands separators and two decimals.
func formatAmount(amount decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", amount.Round(2).InexactFloat64())
}
