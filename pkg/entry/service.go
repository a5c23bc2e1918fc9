package entry

import (
	"context"
	"errors"
	"strings"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/cashaccount"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/collaborator"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]Entry, error)
	ListLoanEntries(ctx context.Context, projectId int, loanId int) ([]Entry, error)
	GetEntry(ctx context.Context, projectId int, entryId int) (Entry, error)
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (Entry, error)
	DeleteEntry(ctx context.Context, projectId int, entryId int) error
}

// ExistsFunc reports a not-found error when id is not part of the project.
type ExistsFunc func(ctx context.Context, projectId int, id int) error

type ServiceImpl struct {
	repo           Repository
	guard          collaborator.Guard
	categories     category.Service
	accounts       cashaccount.Service
	scenarioExists ExistsFunc
	loanExists     ExistsFunc
	eventBus       *event_bus.EventBus
}

func NewService(
	repo Repository,
	guard collaborator.Guard,
	categories category.Service,
	accounts cashaccount.Service,
	scenarioExists ExistsFunc,
	loanExists ExistsFunc,
	eventBus *event_bus.EventBus,
) *ServiceImpl {
	return &ServiceImpl{
		repo:           repo,
		guard:          guard,
		categories:     categories,
		accounts:       accounts,
		scenarioExists: scenarioExists,
		loanExists:     loanExists,
		eventBus:       eventBus,
	}
}

func (s *ServiceImpl) ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]Entry, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListEntries(ctx, projectId, scenarioId)
}

func (s *ServiceImpl) ListLoanEntries(ctx context.Context, projectId int, loanId int) ([]Entry, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListLoanEntries(ctx, projectId, loanId)
}

func (s *ServiceImpl) GetEntry(ctx context.Context, projectId int, entryId int) (Entry, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Entry{}, err
	}
	return s.repo.GetEntry(ctx, projectId, entryId)
}

func (s *ServiceImpl) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	if _, err := s.guard.RequireRole(ctx, entry.ProjectId, collaborator.RoleEditor); err != nil {
		return Entry{}, err
	}
	if entry.ScenarioId != nil && s.scenarioExists != nil {
		if err := s.scenarioExists(ctx, entry.ProjectId, *entry.ScenarioId); err != nil {
			return Entry{}, err
		}
	}
	if err := s.validate(ctx, &entry); err != nil {
		return Entry{}, err
	}
	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.publishChanged(ctx, created.ProjectId, created.Id, false)
	return created, nil
}

func (s *ServiceImpl) UpdateEntry(ctx context.Context, entry Entry) (Entry, error) {
	if _, err := s.guard.RequireRole(ctx, entry.ProjectId, collaborator.RoleEditor); err != nil {
		return Entry{}, err
	}
	existing, err := s.repo.GetEntry(ctx, entry.ProjectId, entry.Id)
	if err != nil {
		return Entry{}, err
	}
	// an entry never moves between the base plan and scenarios
	entry.ScenarioId = existing.ScenarioId
	if err := s.validate(ctx, &entry); err != nil {
		return Entry{}, err
	}
	updated, err := s.repo.UpdateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	if !updated {
		return Entry{}, ErrEntryNotFound
	}
	s.publishChanged(ctx, entry.ProjectId, entry.Id, false)
	return entry, nil
}

func (s *ServiceImpl) DeleteEntry(ctx context.Context, projectId int, entryId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteEntry(ctx, projectId, entryId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	s.publishChanged(ctx, projectId, entryId, true)
	return nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, projectId int, entryId int, deleted bool) {
	err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.EntryChanged, event_bus.EntryChangedPayload{
		ProjectId: projectId,
		EntryId:   entryId,
		Deleted:   deleted,
	}))
	if err != nil {
		log.Errorf("failed to publish change of entry %d: %v", entryId, err)
	}
}

func (s *ServiceImpl) validate(ctx context.Context, e *Entry) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return rest.Invalid("name", "Entry name is required")
	}
	if _, err := category.ParseType(string(e.Type)); err != nil {
		return rest.Invalid("type", "Type must be income or expense")
	}
	if !e.Amount.IsPositive() {
		return rest.Invalid("amount", "Amount must be greater than zero")
	}
	e.Amount = e.Amount.Round(2)
	if _, err := ParseFrequency(string(e.Frequency)); err != nil {
		return rest.Invalid("frequency", "Frequency must be one of once, weekly, monthly, bimonthly, quarterly, semiannual, yearly")
	}
	if e.StartDate.IsZero() {
		return rest.Invalid("startDate", "Start date is required")
	}
	e.StartDate = utils.TruncateDay(e.StartDate)
	if e.EndDate != nil {
		end := utils.TruncateDay(*e.EndDate)
		if end.Before(e.StartDate) {
			return rest.Invalid("endDate", "End date cannot be before the start date")
		}
		e.EndDate = &end
	}
	if e.Frequency == FrequencyOnce {
		e.EndDate = nil
	}
	if e.IsProvision && e.Type != category.TypeExpense {
		return rest.Invalid("isProvision", "Only expenses can be provisioned")
	}
	e.Supplier = strings.TrimSpace(e.Supplier)
	e.Notes = strings.TrimSpace(e.Notes)

	if err := s.validateCategories(ctx, e); err != nil {
		return err
	}
	if e.CashAccountId != nil {
		if _, err := s.accounts.GetAccount(ctx, e.ProjectId, *e.CashAccountId); err != nil {
			if errors.Is(err, cashaccount.ErrAccountNotFound) {
				return rest.Invalid("cashAccountId", "Cash account does not exist")
			}
			return err
		}
	}
	if e.LoanId != nil && e.ScenarioId != nil {
		return rest.Invalid("loanId", "Only base plan entries can repay a loan")
	}
	if e.LoanId != nil && s.loanExists != nil {
		if err := s.loanExists(ctx, e.ProjectId, *e.LoanId); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServiceImpl) validateCategories(ctx context.Context, e *Entry) error {
	if e.SubCategoryId != nil && e.CategoryId == nil {
		return rest.Invalid("subCategoryId", "A sub-category requires a category")
	}
	if e.CategoryId == nil {
		return nil
	}
	c, err := s.categories.GetCategory(ctx, e.ProjectId, *e.CategoryId)
	if errors.Is(err, category.ErrCategoryNotFound) {
		return rest.Invalid("categoryId", "Category does not exist")
	}
	if err != nil {
		return err
	}
	if c.IsSubCategory() {
		return rest.Invalid("categoryId", "Category must be a top-level category")
	}
	if c.Type != e.Type {
		return rest.Invalid("categoryId", "Category type does not match the entry type")
	}
	if e.SubCategoryId == nil {
		return nil
	}
	sub, err := s.categories.GetCategory(ctx, e.ProjectId, *e.SubCategoryId)
	if errors.Is(err, category.ErrCategoryNotFound) {
		return rest.Invalid("subCategoryId", "Sub-category does not exist")
	}
	if err != nil {
		return err
	}
	if sub.ParentId == nil || *sub.ParentId != c.Id {
		return rest.Invalid("subCategoryId", "Sub-category does not belong to the category")
	}
	return nil
}
