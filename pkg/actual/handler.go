package actual

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
)

type PaymentDTO struct {
	Id            int             `json:"id"`
	Date          rest.Date       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	CashAccountId *int            `json:"cashAccountId,omitempty"`
	Kind          string          `json:"kind"`
}

type ActualDTO struct {
	Id          int             `json:"id"`
	EntryId     int             `json:"entryId"`
	Date        rest.Date       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Payments    []PaymentDTO    `json:"payments"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      string          `json:"status"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrActualNotFound, Status: http.StatusNotFound},
	{Err: ErrPaymentNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List actuals of a project
// @Tags Actual
// @Produce json
// @Param projectId path int true "Project ID"
// @Param entryId query int false "Entry ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {array} ActualDTO
// @Router /api/project/{projectId}/actual [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var filter Filter
	if filter.EntryId, ok = rest.QueryOptionalInt(w, r, "entryId"); !ok {
		return
	}
	if filter.From, ok = rest.QueryOptionalDate(w, r, "from"); !ok {
		return
	}
	if filter.To, ok = rest.QueryOptionalDate(w, r, "to"); !ok {
		return
	}
	actuals, err := h.service.ListActuals(r.Context(), projectId, filter)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]ActualDTO, 0, len(actuals))
	for _, a := range actuals {
		dtos = append(dtos, toDTO(a))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get an actual with its payments
// @Tags Actual
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Success 200 {object} ActualDTO
// @Router /api/project/{projectId}/actual/{actualId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetActual(r.Context(), projectId, actualId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(a))
}

// Create godoc
// @Summary Record an actual, optionally split into payments
// @Tags Actual
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actual body ActualDTO true "Actual"
// @Success 201 {object} ActualDTO
// @Router /api/project/{projectId}/actual [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto ActualDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	a := fromDTO(dto)
	a.ProjectId = projectId
	created, err := h.service.RecordActual(r.Context(), a)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update the date, amount and description of an actual
// @Tags Actual
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Param actual body ActualDTO true "Actual"
// @Success 200 {object} ActualDTO
// @Router /api/project/{projectId}/actual/{actualId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto ActualDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	a := fromDTO(dto)
	a.Id = actualId
	a.ProjectId = projectId
	updated, err := h.service.UpdateActual(r.Context(), a)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete an actual with its payments
// @Tags Actual
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Success 204
// @Router /api/project/{projectId}/actual/{actualId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteActual(r.Context(), projectId, actualId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPayment godoc
// @Summary Add a payment to an actual
// @Tags Actual
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Param payment body PaymentDTO true "Payment"
// @Success 201 {object} ActualDTO
// @Router /api/project/{projectId}/actual/{actualId}/payment [post]
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto PaymentDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	p := paymentFromDTO(dto)
	p.ActualId = actualId
	a, err := h.service.AddPayment(r.Context(), projectId, p)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(a))
}

// UpdatePayment godoc
// @Summary Update a payment
// @Tags Actual
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Param paymentId path int true "Payment ID"
// @Param payment body PaymentDTO true "Payment"
// @Success 200 {object} ActualDTO
// @Router /api/project/{projectId}/actual/{actualId}/payment/{paymentId} [put]
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	paymentId, ok := rest.PathInt(w, r, "paymentId")
	if !ok {
		return
	}
	var dto PaymentDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	p := paymentFromDTO(dto)
	p.Id = paymentId
	p.ActualId = actualId
	a, err := h.service.UpdatePayment(r.Context(), projectId, p)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(a))
}

// DeletePayment godoc
// @Summary Delete a payment
// @Tags Actual
// @Produce json
// @Param projectId path int true "Project ID"
// @Param actualId path int true "Actual ID"
// @Param paymentId path int true "Payment ID"
// @Success 200 {object} ActualDTO
// @Router /api/project/{projectId}/actual/{actualId}/payment/{paymentId} [delete]
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	projectId, actualId, ok := pathIds(w, r)
	if !ok {
		return
	}
	paymentId, ok := rest.PathInt(w, r, "paymentId")
	if !ok {
		return
	}
	a, err := h.service.DeletePayment(r.Context(), projectId, actualId, paymentId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(a))
}

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return 0, 0, false
	}
	actualId, ok := rest.PathInt(w, r, "actualId")
	if !ok {
		return 0, 0, false
	}
	return projectId, actualId, true
}

func toDTO(a Actual) ActualDTO {
	payments := make([]PaymentDTO, 0, len(a.Payments))
	for _, p := range a.Payments {
		payments = append(payments, PaymentDTO{
			Id:            p.Id,
			Date:          rest.NewDate(p.Date),
			Amount:        p.Amount,
			CashAccountId: p.CashAccountId,
			Kind:          string(p.Kind),
		})
	}
	return ActualDTO{
		Id:          a.Id,
		EntryId:     a.EntryId,
		Date:        rest.NewDate(a.Date),
		Amount:      a.Amount,
		Description: a.Description,
		Payments:    payments,
		Paid:        a.Paid(),
		Remaining:   a.Remaining(),
		Status:      string(a.Status()),
	}
}

func fromDTO(dto ActualDTO) Actual {
	payments := make([]Payment, 0, len(dto.Payments))
	for _, p := range dto.Payments {
		payments = append(payments, paymentFromDTO(p))
	}
	return Actual{
		EntryId:     dto.EntryId,
		Date:        dto.Date.Time,
		Amount:      dto.Amount,
		Description: dto.Description,
		Payments:    payments,
	}
}

func paymentFromDTO(dto PaymentDTO) Payment {
	return Payment{
		Date:          dto.Date.Time,
		Amount:        dto.Amount,
		CashAccountId: dto.CashAccountId,
		Kind:          Kind(dto.Kind),
	}
}
