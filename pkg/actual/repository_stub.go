package actual

import (
	"context"
	"sort"
	"time"

	"github.com/cashplan/cashplan/pkg/category"
)

type RepositoryStub struct {
	actuals       map[int]Actual
	nextActualId  int
	nextPaymentId int
	// EntryTypes resolves the entry type of payment lines; unknown entries are expenses.
	EntryTypes map[int]category.Type
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{actuals: map[int]Actual{}, EntryTypes: map[int]category.Type{}}
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func (s *RepositoryStub) ListActuals(ctx context.Context, projectId int, filter Filter) ([]Actual, error) {
	actuals := make([]Actual, 0)
	for _, a := range s.actuals {
		if a.ProjectId != projectId {
			continue
		}
		if filter.EntryId != nil && a.EntryId != *filter.EntryId {
			continue
		}
		if !inRange(a.Date, filter.From, filter.To) {
			continue
		}
		actuals = append(actuals, copyActual(a))
	}
	sort.Slice(actuals, func(i, j int) bool {
		if !actuals[i].Date.Equal(actuals[j].Date) {
			return actuals[i].Date.Before(actuals[j].Date)
		}
		return actuals[i].Id < actuals[j].Id
	})
	return actuals, nil
}

func copyActual(a Actual) Actual {
	a.Payments = append([]Payment{}, a.Payments...)
	return a
}

func (s *RepositoryStub) GetActual(ctx context.Context, projectId int, actualId int) (Actual, error) {
	a, ok := s.actuals[actualId]
	if !ok || a.ProjectId != projectId {
		return Actual{}, ErrActualNotFound
	}
	return copyActual(a), nil
}

func (s *RepositoryStub) CreateActual(ctx context.Context, actual Actual) (Actual, error) {
	s.nextActualId++
	actual.Id = s.nextActualId
	payments := make([]Payment, 0, len(actual.Payments))
	for _, p := range actual.Payments {
		s.nextPaymentId++
		p.Id = s.nextPaymentId
		p.ActualId = actual.Id
		payments = append(payments, p)
	}
	actual.Payments = payments
	s.actuals[actual.Id] = actual
	return copyActual(actual), nil
}

func (s *RepositoryStub) UpdateActual(ctx context.Context, actual Actual) (bool, error) {
	existing, ok := s.actuals[actual.Id]
	if !ok || existing.ProjectId != actual.ProjectId {
		return false, nil
	}
	existing.Date = actual.Date
	existing.Amount = actual.Amount
	existing.Description = actual.Description
	s.actuals[actual.Id] = existing
	return true, nil
}

func (s *RepositoryStub) DeleteActual(ctx context.Context, projectId int, actualId int) (bool, error) {
	a, ok := s.actuals[actualId]
	if !ok || a.ProjectId != projectId {
		return false, nil
	}
	delete(s.actuals, actualId)
	return true, nil
}

func (s *RepositoryStub) AddPayment(ctx context.Context, payment Payment) (Payment, error) {
	a, ok := s.actuals[payment.ActualId]
	if !ok {
		return Payment{}, ErrActualNotFound
	}
	s.nextPaymentId++
	payment.Id = s.nextPaymentId
	a.Payments = append(a.Payments, payment)
	s.actuals[a.Id] = a
	return payment, nil
}

func (s *RepositoryStub) UpdatePayment(ctx context.Context, payment Payment) (bool, error) {
	a, ok := s.actuals[payment.ActualId]
	if !ok {
		return false, nil
	}
	for i, p := range a.Payments {
		if p.Id == payment.Id {
			a.Payments[i] = payment
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) DeletePayment(ctx context.Context, actualId int, paymentId int) (bool, error) {
	a, ok := s.actuals[actualId]
	if !ok {
		return false, nil
	}
	for i, p := range a.Payments {
		if p.Id == paymentId {
			a.Payments = append(a.Payments[:i], a.Payments[i+1:]...)
			s.actuals[actualId] = a
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) ListPaymentLines(ctx context.Context, projectId int, from, to *time.Time) ([]PaymentLine, error) {
	lines := make([]PaymentLine, 0)
	for _, a := range s.actuals {
		if a.ProjectId != projectId {
			continue
		}
		entryType, ok := s.EntryTypes[a.EntryId]
		if !ok {
			entryType = category.TypeExpense
		}
		for _, p := range a.Payments {
			if inRange(p.Date, from, to) {
				lines = append(lines, PaymentLine{Payment: p, EntryId: a.EntryId, EntryType: entryType})
			}
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].Id < lines[j].Id
	})
	return lines, nil
}
