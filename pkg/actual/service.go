package actual

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/cashaccount"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/entry"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListActuals(ctx context.Context, projectId int, filter Filter) ([]Actual, error)
	GetActual(ctx context.Context, projectId int, actualId int) (Actual, error)
	// RecordActual stores a realized transaction. A zero amount takes the
	// amount of the entry; the payments, if any, split it.
	RecordActual(ctx context.Context, actual Actual) (Actual, error)
	UpdateActual(ctx context.Context, actual Actual) (Actual, error)
	DeleteActual(ctx context.Context, projectId int, actualId int) error
	AddPayment(ctx context.Context, projectId int, payment Payment) (Actual, error)
	UpdatePayment(ctx context.Context, projectId int, payment Payment) (Actual, error)
	DeletePayment(ctx context.Context, projectId int, actualId int, paymentId int) (Actual, error)
	ListPaymentLines(ctx context.Context, projectId int, from, to *time.Time) ([]PaymentLine, error)
}

type ServiceImpl struct {
	repo     Repository
	guard    collaborator.Guard
	entries  entry.Service
	accounts cashaccount.Service
	eventBus *event_bus.EventBus
}

func NewService(
	repo Repository,
	guard collaborator.Guard,
	entries entry.Service,
	accounts cashaccount.Service,
	eventBus *event_bus.EventBus,
) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, entries: entries, accounts: accounts, eventBus: eventBus}
}

func (s *ServiceImpl) ListActuals(ctx context.Context, projectId int, filter Filter) ([]Actual, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, rest.Invalid("to", "'to' must not be before 'from'")
	}
	return s.repo.ListActuals(ctx, projectId, filter)
}

func (s *ServiceImpl) GetActual(ctx context.Context, projectId int, actualId int) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Actual{}, err
	}
	return s.repo.GetActual(ctx, projectId, actualId)
}

func (s *ServiceImpl) RecordActual(ctx context.Context, actual Actual) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, actual.ProjectId, collaborator.RoleEditor); err != nil {
		return Actual{}, err
	}
	e, err := s.entryOf(ctx, actual.ProjectId, actual.EntryId)
	if err != nil {
		return Actual{}, err
	}
	if actual.Amount.IsZero() {
		actual.Amount = e.Amount
	}
	if err := normalizeActual(&actual); err != nil {
		return Actual{}, err
	}
	for i := range actual.Payments {
		if actual.Payments[i].Date.IsZero() {
			actual.Payments[i].Date = actual.Date
		}
		if err := s.validatePayment(ctx, actual.ProjectId, e, &actual.Payments[i]); err != nil {
			return Actual{}, err
		}
	}

	created, err := s.repo.CreateActual(ctx, actual)
	if err != nil {
		return Actual{}, err
	}
	log.Debugf("Recorded actual %d for entry %d", created.Id, created.EntryId)
	s.publishRecorded(ctx, created)
	return created, nil
}

func (s *ServiceImpl) UpdateActual(ctx context.Context, actual Actual) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, actual.ProjectId, collaborator.RoleEditor); err != nil {
		return Actual{}, err
	}
	existing, err := s.repo.GetActual(ctx, actual.ProjectId, actual.Id)
	if err != nil {
		return Actual{}, err
	}
	existing.Date = actual.Date
	existing.Amount = actual.Amount
	existing.Description = actual.Description
	if err := normalizeActual(&existing); err != nil {
		return Actual{}, err
	}
	updated, err := s.repo.UpdateActual(ctx, existing)
	if err != nil {
		return Actual{}, err
	}
	if !updated {
		return Actual{}, ErrActualNotFound
	}
	s.publishRecorded(ctx, existing)
	return existing, nil
}

func (s *ServiceImpl) DeleteActual(ctx context.Context, projectId int, actualId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	existing, err := s.repo.GetActual(ctx, projectId, actualId)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteActual(ctx, projectId, actualId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrActualNotFound
	}
	s.publishRecorded(ctx, existing)
	return nil
}

func (s *ServiceImpl) AddPayment(ctx context.Context, projectId int, payment Payment) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Actual{}, err
	}
	a, err := s.repo.GetActual(ctx, projectId, payment.ActualId)
	if err != nil {
		return Actual{}, err
	}
	e, err := s.entryOf(ctx, projectId, a.EntryId)
	if err != nil {
		return Actual{}, err
	}
	if payment.Date.IsZero() {
		payment.Date = a.Date
	}
	if err := s.validatePayment(ctx, projectId, e, &payment); err != nil {
		return Actual{}, err
	}
	if _, err := s.repo.AddPayment(ctx, payment); err != nil {
		return Actual{}, err
	}
	return s.reloaded(ctx, a)
}

func (s *ServiceImpl) UpdatePayment(ctx context.Context, projectId int, payment Payment) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Actual{}, err
	}
	a, err := s.repo.GetActual(ctx, projectId, payment.ActualId)
	if err != nil {
		return Actual{}, err
	}
	e, err := s.entryOf(ctx, projectId, a.EntryId)
	if err != nil {
		return Actual{}, err
	}
	if payment.Date.IsZero() {
		payment.Date = a.Date
	}
	if err := s.validatePayment(ctx, projectId, e, &payment); err != nil {
		return Actual{}, err
	}
	updated, err := s.repo.UpdatePayment(ctx, payment)
	if err != nil {
		return Actual{}, err
	}
	if !updated {
		return Actual{}, ErrPaymentNotFound
	}
	return s.reloaded(ctx, a)
}

func (s *ServiceImpl) DeletePayment(ctx context.Context, projectId int, actualId int, paymentId int) (Actual, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Actual{}, err
	}
	a, err := s.repo.GetActual(ctx, projectId, actualId)
	if err != nil {
		return Actual{}, err
	}
	deleted, err := s.repo.DeletePayment(ctx, actualId, paymentId)
	if err != nil {
		return Actual{}, err
	}
	if !deleted {
		return Actual{}, ErrPaymentNotFound
	}
	return s.reloaded(ctx, a)
}

func (s *ServiceImpl) ListPaymentLines(ctx context.Context, projectId int, from, to *time.Time) ([]PaymentLine, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentLines(ctx, projectId, from, to)
}

func (s *ServiceImpl) reloaded(ctx context.Context, a Actual) (Actual, error) {
	s.publishRecorded(ctx, a)
	return s.repo.GetActual(ctx, a.ProjectId, a.Id)
}

func (s *ServiceImpl) entryOf(ctx context.Context, projectId int, entryId int) (entry.Entry, error) {
	e, err := s.entries.GetEntry(ctx, projectId, entryId)
	if errors.Is(err, entry.ErrEntryNotFound) {
		return entry.Entry{}, rest.Invalid("entryId", "Budget entry does not exist")
	}
	return e, err
}

func normalizeActual(a *Actual) error {
	if a.Date.IsZero() {
		return rest.Invalid("date", "Date is required")
	}
	a.Date = utils.TruncateDay(a.Date)
	if !a.Amount.IsPositive() {
		return rest.Invalid("amount", "Amount must be greater than zero")
	}
	a.Amount = a.Amount.Round(2)
	a.Description = strings.TrimSpace(a.Description)
	return nil
}

func (s *ServiceImpl) validatePayment(ctx context.Context, projectId int, e entry.Entry, p *Payment) error {
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return rest.Invalid("kind", "Kind must be one of standard, provision, payout")
	}
	p.Kind = kind
	if p.Kind != KindStandard && !e.IsProvision {
		return rest.Invalid("kind", "Provision and payout payments require a provision entry")
	}
	if !p.Amount.IsPositive() {
		return rest.Invalid("amount", "Payment amount must be greater than zero")
	}
	p.Amount = p.Amount.Round(2)
	p.Date = utils.TruncateDay(p.Date)
	if p.CashAccountId == nil {
		p.CashAccountId = e.CashAccountId
	}
	if p.CashAccountId != nil {
		if _, err := s.accounts.GetAccount(ctx, projectId, *p.CashAccountId); err != nil {
			if errors.Is(err, cashaccount.ErrAccountNotFound) {
				return rest.Invalid("cashAccountId", "Cash account does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *ServiceImpl) publishRecorded(ctx context.Context, a Actual) {
	err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.PaymentRecorded, event_bus.PaymentRecordedPayload{
		ProjectId: a.ProjectId,
		ActualId:  a.Id,
		EntryId:   a.EntryId,
	}))
	if err != nil {
		log.Errorf("failed to publish payment of actual %d: %v", a.Id, err)
	}
}
