package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/cashplan/cashplan/internal/cache"
	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/cashaccount"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Forecast covers the whole months of [from, to]. A scenario adds its
	// entries to those of the base plan.
	Forecast(ctx context.Context, projectId int, from, to time.Time, scenarioId *int) (Forecast, error)
}

type ServiceImpl struct {
	guard          collaborator.Guard
	entries        entry.Service
	actuals        actual.Service
	accounts       cashaccount.Service
	scenarioExists entry.ExistsFunc
	cache          *cache.ProjectCache[Forecast]
	clock          utils.Clock
}

func NewService(
	guard collaborator.Guard,
	entries entry.Service,
	actuals actual.Service,
	accounts cashaccount.Service,
	scenarioExists entry.ExistsFunc,
	cache *cache.ProjectCache[Forecast],
	clock utils.Clock,
) *ServiceImpl {
	return &ServiceImpl{
		guard:          guard,
		entries:        entries,
		actuals:        actuals,
		accounts:       accounts,
		scenarioExists: scenarioExists,
		cache:          cache,
		clock:          clock,
	}
}

// Subscribe drops the cached forecasts of a project whenever its data changes.
func (s *ServiceImpl) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.EntryChanged, func(e event_bus.Typed[event_bus.EntryChangedPayload]) error {
		s.cache.Invalidate(e.Payload.ProjectId)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.PaymentRecorded, func(e event_bus.Typed[event_bus.PaymentRecordedPayload]) error {
		s.cache.Invalidate(e.Payload.ProjectId)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.AccountChanged, func(e event_bus.Typed[event_bus.AccountChangedPayload]) error {
		s.cache.Invalidate(e.Payload.ProjectId)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ScenarioDeleted, func(e event_bus.Typed[event_bus.ScenarioDeletedPayload]) error {
		s.cache.Invalidate(e.Payload.ProjectId)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ProjectDeleted, func(e event_bus.Typed[event_bus.ProjectDeletedPayload]) error {
		s.cache.Invalidate(e.Payload.ProjectId)
		return nil
	})
}

func (s *ServiceImpl) Forecast(ctx context.Context, projectId int, from, to time.Time, scenarioId *int) (Forecast, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Forecast{}, err
	}
	from, to = Range(from, to)
	if to.Before(from) {
		return Forecast{}, rest.Invalid("to", "'to' must not be before 'from'")
	}
	if monthIndex(from, to) >= MaxMonths {
		return Forecast{}, rest.Invalid("to", fmt.Sprintf("A forecast covers at most %d months", MaxMonths))
	}

	today := utils.Today(s.clock)
	key := cacheKey(from, to, today, scenarioId)
	if cached, ok := s.cache.Get(projectId, key); ok {
		log.Tracef("forecast cache hit for project %d: %s", projectId, key)
		return cached, nil
	}
	gen := s.cache.Generation(projectId)

	entries, err := s.entries.ListEntries(ctx, projectId, nil)
	if err != nil {
		return Forecast{}, err
	}
	if scenarioId != nil {
		if err := s.scenarioExists(ctx, projectId, *scenarioId); err != nil {
			return Forecast{}, err
		}
		scenarioEntries, err := s.entries.ListEntries(ctx, projectId, scenarioId)
		if err != nil {
			return Forecast{}, err
		}
		entries = append(entries, scenarioEntries...)
	}

	lines, err := s.actuals.ListPaymentLines(ctx, projectId, &from, &to)
	if err != nil {
		return Forecast{}, err
	}
	opening, err := s.openingBalance(ctx, projectId, from)
	if err != nil {
		return Forecast{}, err
	}

	months, totals := Build(from, to, today, opening, entries, lines)
	f := Forecast{
		ProjectId:      projectId,
		ScenarioId:     scenarioId,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Months:         months,
		Totals:         totals,
	}
	s.cache.Set(projectId, key, gen, f)
	return f, nil
}

// openingBalance sums the account balances at the end of the day before from.
func (s *ServiceImpl) openingBalance(ctx context.Context, projectId int, from time.Time) (decimal.Decimal, error) {
	balances, err := s.accounts.Balances(ctx, projectId, from.AddDate(0, 0, -1))
	if err != nil {
		return decimal.Zero, err
	}
	opening := decimal.Zero
	for _, b := range balances {
		opening = opening.Add(b.Balance)
	}
	return opening, nil
}

func cacheKey(from, to, today time.Time, scenarioId *int) string {
	scenario := "base"
	if scenarioId != nil {
		scenario = fmt.Sprintf("scenario-%d", *scenarioId)
	}
	return fmt.Sprintf("%s/%s/%s/%s", from.Format(rest.DateLayout), to.Format(rest.DateLayout), today.Format(rest.DateLayout), scenario)
}
