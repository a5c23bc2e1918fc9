package entry

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EntryDTO struct {
	Id            int             `json:"id"`
	ScenarioId    *int            `json:"scenarioId,omitempty"`
	Type          string          `json:"type"`
	Name          string          `json:"name"`
	CategoryId    *int            `json:"categoryId,omitempty"`
	SubCategoryId *int            `json:"subCategoryId,omitempty"`
	Supplier      string          `json:"supplier"`
	Amount        decimal.Decimal `json:"amount"`
	Frequency     string          `json:"frequency"`
	StartDate     rest.Date       `json:"startDate"`
	EndDate       *rest.Date      `json:"endDate,omitempty"`
	CashAccountId *int            `json:"cashAccountId,omitempty"`
	IsProvision   bool            `json:"isProvision"`
	LoanId        *int            `json:"loanId,omitempty"`
	Notes         string          `json:"notes"`
}

type OccurrenceDTO struct {
	Date   rest.Date       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = append([]rest.Mapping{
	{Err: ErrEntryNotFound, Status: http.StatusNotFound},
}, collaborator.AccessErrors...)

// List godoc
// @Summary List budget entries of the base plan or of a scenario
// @Tags Entry
// @Produce json
// @Param projectId path int true "Project ID"
// @Param scenarioId query int false "Scenario ID"
// @Success 200 {array} EntryDTO
// @Router /api/project/{projectId}/entry [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	scenarioId, ok := rest.QueryOptionalInt(w, r, "scenarioId")
	if !ok {
		return
	}
	entries, err := h.service.ListEntries(r.Context(), projectId, scenarioId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a budget entry
// @Tags Entry
// @Produce json
// @Param projectId path int true "Project ID"
// @Param entryId path int true "Entry ID"
// @Success 200 {object} EntryDTO
// @Router /api/project/{projectId}/entry/{entryId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	entryId, ok := rest.PathInt(w, r, "entryId")
	if !ok {
		return
	}
	e, err := h.service.GetEntry(r.Context(), projectId, entryId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(e))
}

// Create godoc
// @Summary Create a budget entry
// @Tags Entry
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param entry body EntryDTO true "Entry"
// @Success 201 {object} EntryDTO
// @Router /api/project/{projectId}/entry [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	var dto EntryDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	log.Debugf("Creating entry %q in project %d", dto.Name, projectId)
	e := FromDTO(dto)
	e.ProjectId = projectId
	created, err := h.service.CreateEntry(r.Context(), e)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

// Update godoc
// @Summary Update a budget entry
// @Tags Entry
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param entryId path int true "Entry ID"
// @Param entry body EntryDTO true "Entry"
// @Success 200 {object} EntryDTO
// @Router /api/project/{projectId}/entry/{entryId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	entryId, ok := rest.PathInt(w, r, "entryId")
	if !ok {
		return
	}
	var dto EntryDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	e := FromDTO(dto)
	e.Id = entryId
	e.ProjectId = projectId
	updated, err := h.service.UpdateEntry(r.Context(), e)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Delete godoc
// @Summary Delete a budget entry with its actuals
// @Tags Entry
// @Param projectId path int true "Project ID"
// @Param entryId path int true "Entry ID"
// @Success 204
// @Router /api/project/{projectId}/entry/{entryId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	entryId, ok := rest.PathInt(w, r, "entryId")
	if !ok {
		return
	}
	if err := h.service.DeleteEntry(r.Context(), projectId, entryId); err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Occurrences godoc
// @Summary Expand the schedule of an entry
// @Tags Entry
// @Produce json
// @Param projectId path int true "Project ID"
// @Param entryId path int true "Entry ID"
// @Param from query string false "From date (YYYY-MM-DD), defaults to the entry start"
// @Param to query string false "To date (YYYY-MM-DD), defaults to one year after from"
// @Success 200 {array} OccurrenceDTO
// @Router /api/project/{projectId}/entry/{entryId}/occurrences [get]
func (h *Handler) Occurrences(w http.ResponseWriter, r *http.Request) {
	projectId, ok := rest.PathInt(w, r, "projectId")
	if !ok {
		return
	}
	entryId, ok := rest.PathInt(w, r, "entryId")
	if !ok {
		return
	}
	e, err := h.service.GetEntry(r.Context(), projectId, entryId)
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	from, ok := rest.QueryDate(w, r, "from", e.StartDate)
	if !ok {
		return
	}
	to, ok := rest.QueryDate(w, r, "to", from.AddDate(1, 0, -1))
	if !ok {
		return
	}
	if to.Before(from) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date range", "'to' must not be before 'from'")
		return
	}
	occurrences := e.Occurrences(from, to)
	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, OccurrenceDTO{Date: rest.NewDate(o.Date), Amount: o.Amount})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func ToDTO(e Entry) EntryDTO {
	return EntryDTO{
		Id:            e.Id,
		ScenarioId:    e.ScenarioId,
		Type:          string(e.Type),
		Name:          e.Name,
		CategoryId:    e.CategoryId,
		SubCategoryId: e.SubCategoryId,
		Supplier:      e.Supplier,
		Amount:        e.Amount,
		Frequency:     string(e.Frequency),
		StartDate:     rest.NewDate(e.StartDate),
		EndDate:       rest.DatePtr(e.EndDate),
		CashAccountId: e.CashAccountId,
		IsProvision:   e.IsProvision,
		LoanId:        e.LoanId,
		Notes:         e.Notes,
	}
}

func FromDTO(dto EntryDTO) Entry {
	return Entry{
		Id:            dto.Id,
		ScenarioId:    dto.ScenarioId,
		Type:          category.Type(dto.Type),
		Name:          dto.Name,
		CategoryId:    dto.CategoryId,
		SubCategoryId: dto.SubCategoryId,
		Supplier:      dto.Supplier,
		Amount:        dto.Amount,
		Frequency:     Frequency(dto.Frequency),
		StartDate:     dto.StartDate.Time,
		EndDate:       dto.EndDate.TimePtr(),
		CashAccountId: dto.CashAccountId,
		IsProvision:   dto.IsProvision,
		LoanId:        dto.LoanId,
		Notes:         dto.Notes,
	}
}
