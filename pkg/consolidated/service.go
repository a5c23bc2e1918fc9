package consolidated

import (
	"context"
	"time"

	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/cashplan/cashplan/pkg/project"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds the forecasts computed at once for one request.
const maxParallel = 4

type Service interface {
	// Consolidate sums the base-plan forecasts of the given projects, or of
	// all active projects of the user when none are given.
	Consolidate(ctx context.Context, projectIds []int, from, to time.Time) (View, error)
}

type ServiceImpl struct {
	projects  project.Service
	forecasts forecast.Service
}

func NewService(projects project.Service, forecasts forecast.Service) *ServiceImpl {
	return &ServiceImpl{projects: projects, forecasts: forecasts}
}

func (s *ServiceImpl) Consolidate(ctx context.Context, projectIds []int, from, to time.Time) (View, error) {
	projects, err := s.selectProjects(ctx, projectIds)
	if err != nil {
		return View{}, err
	}
	if len(projects) == 0 {
		return View{}, ErrNoProjects
	}
	currency := projects[0].Currency
	for _, p := range projects[1:] {
		if p.Currency != currency {
			log.Debugf("cannot consolidate %s project %d with %s projects", p.Currency, p.Id, currency)
			return View{}, ErrMixedCurrencies
		}
	}

	forecasts := make([]forecast.Forecast, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, p := range projects {
		g.Go(func() error {
			f, err := s.forecasts.Forecast(gctx, p.Id, from, to, nil)
			if err != nil {
				return err
			}
			forecasts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return combine(currency, names, forecasts), nil
}

func (s *ServiceImpl) selectProjects(ctx context.Context, projectIds []int) ([]project.Project, error) {
	if len(projectIds) == 0 {
		return s.projects.ListProjects(ctx, false)
	}
	seen := make(map[int]bool, len(projectIds))
	projects := make([]project.Project, 0, len(projectIds))
	for _, id := range projectIds {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := s.projects.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}
