package consolidated

import (
	"net/http"
	"strconv"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/cashplan/cashplan/pkg/project"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ProjectTotalDTO struct {
	ProjectId      int               `json:"projectId"`
	Name           string            `json:"name"`
	OpeningBalance decimal.Decimal   `json:"openingBalance"`
	Totals         forecast.MonthDTO `json:"totals"`
}

type ViewDTO struct {
	From           rest.Date           `json:"from"`
	To             rest.Date           `json:"to"`
	Currency       string              `json:"currency"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	Months         []forecast.MonthDTO `json:"months"`
	Totals         forecast.MonthDTO   `json:"totals"`
	Projects       []ProjectTotalDTO   `json:"projects"`
}

type Handler struct {
	service  Service
	renderer *CsvRendererImpl
	clock    utils.Clock
}

func NewHandler(service Service, renderer *CsvRendererImpl, clock utils.Clock) *Handler {
	return &Handler{service: service, renderer: renderer, clock: clock}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrMixedCurrencies, Status: http.StatusConflict},
	{Err: ErrNoProjects, Status: http.StatusNotFound},
	{Err: project.ErrProjectNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// Get godoc
// @Summary Consolidated forecast across projects
// @Tags Consolidated
// @Produce json
// @Produce text/csv
// @Param projectId query []int false "Project IDs, all active projects when omitted" collectionFormat(multi)
// @Param from query string false "First month (YYYY-MM-DD), defaults to the current month"
// @Param to query string false "Last month (YYYY-MM-DD), defaults to eleven months after from"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} ViewDTO
// @Router /api/consolidated [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectIds := make([]int, 0)
	for _, value := range r.URL.Query()["projectId"] {
		id, err := strconv.Atoi(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid projectId", "'projectId' must be an integer")
			return
		}
		projectIds = append(projectIds, id)
	}
	from, ok := rest.QueryDate(w, r, "from", utils.MonthStart(utils.Today(h.clock)))
	if !ok {
		return
	}
	to, ok := rest.QueryDate(w, r, "to", utils.MonthStart(from).AddDate(0, 11, 0))
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid format", "'format' must be json or csv")
		return
	}

	view, err := h.service.Consolidate(r.Context(), projectIds, from, to)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}

	if format == "csv" {
		content, err := h.renderer.Render(view)
		if err != nil {
			log.Errorf("failed to render csv: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to render CSV", "")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=consolidated.csv")
		if _, err := w.Write([]byte(content)); err != nil {
			log.Errorf("failed to write csv: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(view))
}

func toDTO(view View) ViewDTO {
	months := make([]forecast.MonthDTO, 0, len(view.Months))
	for _, m := range view.Months {
		months = append(months, forecast.MonthToDTO(m))
	}
	projects := make([]ProjectTotalDTO, 0, len(view.Projects))
	for _, p := range view.Projects {
		totals := forecast.MonthToDTO(p.Totals)
		totals.Month = ""
		projects = append(projects, ProjectTotalDTO{
			ProjectId:      p.ProjectId,
			Name:           p.Name,
			OpeningBalance: p.OpeningBalance,
			Totals:         totals,
		})
	}
	totals := forecast.MonthToDTO(view.Totals)
	totals.Month = ""
	return ViewDTO{
		From:           rest.NewDate(view.From),
		To:             rest.NewDate(view.To),
		Currency:       view.Currency,
		OpeningBalance: view.OpeningBalance,
		Months:         months,
		Totals:         totals,
		Projects:       projects,
	}
}
