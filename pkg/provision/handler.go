package provision

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
)

type FundDTO struct {
	EntryId     int             `json:"entryId,omitempty"`
	EntryName   string          `json:"entryName,omitempty"`
	Supplier    string          `json:"supplier"`
	Provisioned decimal.Decimal `json:"provisioned"`
	PaidOut     decimal.Decimal `json:"paidOut"`
	Balance     decimal.Decimal `json:"balance"`
	Entries     []FundDTO       `json:"entries,omitempty"`
}

type SummaryDTO struct {
	AsOf      rest.Date `json:"asOf"`
	Suppliers []FundDTO `json:"suppliers"`
	Total     FundDTO   `json:"total"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// Get godoc
// @Summary Provision funds grouped by supplier
// @Tags Provision
// @Produce json
// @Param projectId path int true "Project ID"
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} SummaryDTO
// @Router /api/project/{projectId}/provision [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	asOf, ok := rest.QueryDate(w, r, "asOf", utils.Today(h.clock))
	if !ok {
		return
	}
	summary, err := h.service.Funds(r.Context(), projectId, asOf)
	if err != nil {
		rest.Fail(w, err, collaborator.AccessErrors...)
		return
	}

	suppliers := make([]FundDTO, 0, len(summary.Suppliers))
	for _, fund := range summary.Suppliers {
		entries := make([]FundDTO, 0, len(fund.Entries))
		for _, p := range fund.Entries {
			entries = append(entries, positionToDTO(p))
		}
		suppliers = append(suppliers, FundDTO{
			Supplier:    fund.Supplier,
			Provisioned: fund.Provisioned,
			PaidOut:     fund.PaidOut,
			Balance:     fund.Balance,
			Entries:     entries,
		})
	}
	rest.WriteJSON(w, http.StatusOK, SummaryDTO{
		AsOf:      rest.NewDate(summary.AsOf),
		Suppliers: suppliers,
		Total:     positionToDTO(summary.Total),
	})
}

func positionToDTO(p FundPosition) FundDTO {
	return FundDTO{
		EntryId:     p.EntryId,
		EntryName:   p.EntryName,
		Supplier:    p.Supplier,
		Provisioned: p.Provisioned,
		PaidOut:     p.PaidOut,
		Balance:     p.Balance,
	}
}
