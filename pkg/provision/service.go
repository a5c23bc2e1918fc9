package provision

import (
	"context"
	"time"

	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/entry"
)

type Service interface {
	// Funds aggregates the provision funds of the base plan at the end of asOf.
	Funds(ctx context.Context, projectId int, asOf time.Time) (Summary, error)
}

type ServiceImpl struct {
	guard   collaborator.Guard
	entries entry.Service
	actuals actual.Service
}

func NewService(guard collaborator.Guard, entries entry.Service, actuals actual.Service) *ServiceImpl {
	return &ServiceImpl{guard: guard, entries: entries, actuals: actuals}
}

func (s *ServiceImpl) Funds(ctx context.Context, projectId int, asOf time.Time) (Summary, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Summary{}, err
	}
	asOf = utils.TruncateDay(asOf)
	entries, err := s.entries.ListEntries(ctx, projectId, nil)
	if err != nil {
		return Summary{}, err
	}
	lines, err := s.actuals.ListPaymentLines(ctx, projectId, nil, &asOf)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(asOf, entries, lines), nil
}
