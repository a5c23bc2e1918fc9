package cashaccount

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CashAccountDTO struct {
	Id                 int             `json:"id"`
	Name               string          `json:"name"`
	Bank               string          `json:"bank"`
	InitialBalance     decimal.Decimal `json:"initialBalance"`
	InitialBalanceDate rest.Date       `json:"initialBalanceDate"`
	Archived           bool            `json:"archived"`
}

type BalanceDTO struct {
	AccountId int             `json:"accountId"`
	Name      string          `json:"name"`
	AsOf      rest.Date       `json:"asOf"`
	Balance   decimal.Decimal `json:"balance"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrAccountNotFound, Status: http.StatusNotFound},
	{Err: ErrAccountInUse, Status: http.StatusConflict},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List cash accounts of a project
// @Tags CashAccount
// @Produce json
// @Param projectId path int true "Project ID"
// @Param includeArchived query bool false "Include archived accounts"
// @Success 200 {array} CashAccountDTO
// @Router /api/project/{projectId}/account [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	accounts, err := h.service.ListAccounts(r.Context(), projectId, r.URL.Query().Get("includeArchived") == "true")
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]CashAccountDTO, 0, len(accounts))
	for _, a := range accounts {
		dtos = append(dtos, toDTO(a))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a cash account
// @Tags CashAccount
// @Produce json
// @Param projectId path int true "Project ID"
// @Param accountId path int true "Account ID"
// @Success 200 {object} CashAccountDTO
// @Router /api/project/{projectId}/account/{accountId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	accountId, ok := rest.PathInt(w, r, "accountId")
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), projectId, accountId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(account))
}

// Create godoc
// @Summary Create a cash account
// @Tags CashAccount
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param account body CashAccountDTO true "Account"
// @Success 201 {object} CashAccountDTO
// @Router /api/project/{projectId}/account [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto CashAccountDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	log.Debugf("Creating cash account %q in project %d", dto.Name, projectId)
	account := fromDTO(dto)
	account.ProjectId = projectId
	created, err := h.service.CreateAccount(r.Context(), account)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a cash account
// @Tags CashAccount
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param accountId path int true "Account ID"
// @Param account body CashAccountDTO true "Account"
// @Success 200 {object} CashAccountDTO
// @Router /api/project/{projectId}/account/{accountId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	accountId, ok := rest.PathInt(w, r, "accountId")
	if !ok {
		return
	}
	var dto CashAccountDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	account := fromDTO(dto)
	account.Id = accountId
	account.ProjectId = projectId
	updated, err := h.service.UpdateAccount(r.Context(), account)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a cash account without payments
// @Tags CashAccount
// @Param projectId path int true "Project ID"
// @Param accountId path int true "Account ID"
// @Success 204
// @Failure 409 {object} rest.ErrorResponse "Account in use"
// @Router /api/project/{projectId}/account/{accountId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	accountId, ok := rest.PathInt(w, r, "accountId")
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), projectId, accountId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance godoc
// @Summary Get the balance of a cash account
// @Tags CashAccount
// @Produce json
// @Param projectId path int true "Project ID"
// @Param accountId path int true "Account ID"
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} BalanceDTO
// @Router /api/project/{projectId}/account/{accountId}/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	accountId, ok := rest.PathInt(w, r, "accountId")
	if !ok {
		return
	}
	asOf, ok := rest.QueryDate(w, r, "asOf", utils.Today(h.clock))
	if !ok {
		return
	}
	balance, err := h.service.Balance(r.Context(), projectId, accountId, asOf)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// Balances godoc
// @Summary Get balances of all cash accounts of a project
// @Tags CashAccount
// @Produce json
// @Param projectId path int true "Project ID"
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} BalanceDTO
// @Router /api/project/{projectId}/balance [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	asOf, ok := rest.QueryDate(w, r, "asOf", utils.Today(h.clock))
	if !ok {
		return
	}
	balances, err := h.service.Balances(r.Context(), projectId, asOf)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func toDTO(a CashAccount) CashAccountDTO {
	return CashAccountDTO{
		Id:                 a.Id,
		Name:               a.Name,
		Bank:               a.Bank,
		InitialBalance:     a.InitialBalance,
		InitialBalanceDate: rest.NewDate(a.InitialBalanceDate),
		Archived:           a.Archived,
	}
}

func fromDTO(dto CashAccountDTO) CashAccount {
	return CashAccount{
		Id:                 dto.Id,
		Name:               dto.Name,
		Bank:               dto.Bank,
		InitialBalance:     dto.InitialBalance,
		InitialBalanceDate: dto.InitialBalanceDate.Time,
		Archived:           dto.Archived,
	}
}

func toBalanceDTO(b Balance) BalanceDTO {
	return BalanceDTO{
		AccountId: b.AccountId,
		Name:      b.Name,
		AsOf:      rest.NewDate(b.AsOf),
		Balance:   b.Balance,
	}
}
