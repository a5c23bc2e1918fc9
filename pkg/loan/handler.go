package loan

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
)

type LoanDTO struct {
	Id             int             `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Counterparty   string          `json:"counterparty"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TermMonths     int             `json:"termMonths"`
	StartDate      rest.Date       `json:"startDate"`
	EntryId        *int            `json:"entryId,omitempty"`
	// CreateEntry asks for the monthly repayment entry on creation.
	CreateEntry bool       `json:"createEntry,omitempty"`
	Status      *StatusDTO `json:"status,omitempty"`
}

type StatusDTO struct {
	AsOf            rest.Date       `json:"asOf"`
	PrincipalRepaid decimal.Decimal `json:"principalRepaid"`
	InterestPaid    decimal.Decimal `json:"interestPaid"`
	Remaining       decimal.Decimal `json:"remaining"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	TotalInterest   decimal.Decimal `json:"totalInterest"`
	PaymentsMade    int             `json:"paymentsMade"`
	PaymentsLeft    int             `json:"paymentsLeft"`
	EndDate         rest.Date       `json:"endDate"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrLoanNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List loans with their status
// @Tags Loan
// @Produce json
// @Param projectId path int true "Project ID"
// @Param asOf query string false "Status date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} LoanDTO
// @Router /api/project/{projectId}/loan [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	asOf, ok := rest.QueryDate(w, r, "asOf", utils.Today(h.clock))
	if !ok {
		return
	}
	overviews, err := h.service.ListLoans(r.Context(), projectId, asOf)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]LoanDTO, 0, len(overviews))
	for _, o := range overviews {
		dtos = append(dtos, overviewToDTO(o))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a loan with its status
// @Tags Loan
// @Produce json
// @Param projectId path int true "Project ID"
// @Param loanId path int true "Loan ID"
// @Param asOf query string false "Status date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} LoanDTO
// @Router /api/project/{projectId}/loan/{loanId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, loanId, ok := pathIds(w, r)
	if !ok {
		return
	}
	asOf, ok := rest.QueryDate(w, r, "asOf", utils.Today(h.clock))
	if !ok {
		return
	}
	o, err := h.service.GetLoan(r.Context(), projectId, loanId, asOf)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, overviewToDTO(o))
}

// Create godoc
// @Summary Create a loan, optionally with its monthly repayment entry
// @Tags Loan
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param loan body LoanDTO true "Loan"
// @Success 201 {object} LoanDTO
// @Router /api/project/{projectId}/loan [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto LoanDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	l := fromDTO(dto)
	l.ProjectId = projectId
	created, err := h.service.CreateLoan(r.Context(), l, dto.CreateEntry)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a loan
// @Tags Loan
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param loanId path int true "Loan ID"
// @Param loan body LoanDTO true "Loan"
// @Success 200 {object} LoanDTO
// @Router /api/project/{projectId}/loan/{loanId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, loanId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto LoanDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	l := fromDTO(dto)
	l.Id = loanId
	l.ProjectId = projectId
	updated, err := h.service.UpdateLoan(r.Context(), l)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a loan, its entries are kept and unlinked
// @Tags Loan
// @Param projectId path int true "Project ID"
// @Param loanId path int true "Loan ID"
// @Success 204
// @Router /api/project/{projectId}/loan/{loanId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, loanId, ok := pathIds(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLoan(r.Context(), projectId, loanId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return 0, 0, false
	}
	loanId, ok := rest.PathInt(w, r, "loanId")
	if !ok {
		return 0, 0, false
	}
	return projectId, loanId, true
}

func overviewToDTO(o Overview) LoanDTO {
	dto := toDTO(o.Loan)
	dto.Status = &StatusDTO{
		AsOf:            rest.NewDate(o.Status.AsOf),
		PrincipalRepaid: o.Status.PrincipalRepaid,
		InterestPaid:    o.Status.InterestPaid,
		Remaining:       o.Status.Remaining,
		TotalCost:       o.Status.TotalCost,
		TotalInterest:   o.Status.TotalInterest,
		PaymentsMade:    o.Status.PaymentsMade,
		PaymentsLeft:    o.Status.PaymentsLeft,
		EndDate:         rest.NewDate(o.Status.EndDate),
	}
	return dto
}

func toDTO(l Loan) LoanDTO {
	return LoanDTO{
		Id:             l.Id,
		Kind:           string(l.Kind),
		Name:           l.Name,
		Counterparty:   l.Counterparty,
		Principal:      l.Principal,
		InterestRate:   l.InterestRate,
		MonthlyPayment: l.MonthlyPayment,
		TermMonths:     l.TermMonths,
		StartDate:      rest.NewDate(l.StartDate),
		EntryId:        l.EntryId,
	}
}

func fromDTO(dto LoanDTO) Loan {
	return Loan{
		Kind:           Kind(dto.Kind),
		Name:           dto.Name,
		Counterparty:   dto.Counterparty,
		Principal:      dto.Principal,
		InterestRate:   dto.InterestRate,
		MonthlyPayment: dto.MonthlyPayment,
		TermMonths:     dto.TermMonths,
		StartDate:      dto.StartDate.Time,
	}
}
