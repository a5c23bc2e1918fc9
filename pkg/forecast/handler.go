package forecast

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
)

type MonthDTO struct {
	Month          string          `json:"month"`
	PlannedIncome  decimal.Decimal `json:"plannedIncome"`
	PlannedExpense decimal.Decimal `json:"plannedExpense"`
	ActualIncome   decimal.Decimal `json:"actualIncome"`
	ActualExpense  decimal.Decimal `json:"actualExpense"`
	PlannedNet     decimal.Decimal `json:"plannedNet"`
	ActualNet      decimal.Decimal `json:"actualNet"`
	Balance        decimal.Decimal `json:"balance"`
}

type ForecastDTO struct {
	ProjectId      int             `json:"projectId"`
	ScenarioId     *int            `json:"scenarioId,omitempty"`
	From           rest.Date       `json:"from"`
	To             rest.Date       `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Months         []MonthDTO      `json:"months"`
	Totals         MonthDTO        `json:"totals"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// Get godoc
// @Summary Monthly cashflow forecast of a project
// @Tags Forecast
// @Produce json
// @Param projectId path int true "Project ID"
// @Param from query string false "First month (YYYY-MM-DD), defaults to the current month"
// @Param to query string false "Last month (YYYY-MM-DD), defaults to eleven months after from"
// @Param scenarioId query int false "Scenario ID"
// @Success 200 {object} ForecastDTO
// @Router /api/project/{projectId}/forecast [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	from, ok := rest.QueryDate(w, r, "from", utils.MonthStart(utils.Today(h.clock)))
	if !ok {
		return
	}
	to, ok := rest.QueryDate(w, r, "to", utils.MonthStart(from).AddDate(0, 11, 0))
	if !ok {
		return
	}
	scenarioId, ok := rest.QueryOptionalInt(w, r, "scenarioId")
	if !ok {
		return
	}
	f, err := h.service.Forecast(r.Context(), projectId, from, to, scenarioId)
	if err != nil {
		rest.Fail(w, err, collaborator.AccessErrors...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(f))
}

func MonthToDTO(m Month) MonthDTO {
	return MonthDTO{
		Month:          m.Month.Format("2006-01"),
		PlannedIncome:  m.PlannedIncome,
		PlannedExpense: m.PlannedExpense,
		ActualIncome:   m.ActualIncome,
		ActualExpense:  m.ActualExpense,
		PlannedNet:     m.PlannedNet,
		ActualNet:      m.ActualNet,
		Balance:        m.Balance,
	}
}

func ToDTO(f Forecast) ForecastDTO {
	months := make([]MonthDTO, 0, len(f.Months))
	for _, m := range f.Months {
		months = append(months, MonthToDTO(m))
	}
	totals := MonthToDTO(f.Totals)
	totals.Month = ""
	return ForecastDTO{
		ProjectId:      f.ProjectId,
		ScenarioId:     f.ScenarioId,
		From:           rest.NewDate(f.From),
		To:             rest.NewDate(f.To),
		OpeningBalance: f.OpeningBalance,
		Months:         months,
		Totals:         totals,
	}
}
