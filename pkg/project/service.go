package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListProjects(ctx context.Context, includeArchived bool) ([]Project, error)
	GetProject(ctx context.Context, projectId int) (Project, error)
	CreateProject(ctx context.Context, project Project) (Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	ArchiveProject(ctx context.Context, projectId int, archived bool) (Project, error)
	DeleteProject(ctx context.Context, projectId int) error
}

// CategorySeeder fills a freshly created project with the default category tree.
type CategorySeeder func(ctx context.Context, projectId int) error

type ServiceImpl struct {
	repo           Repository
	guard          collaborator.Guard
	seedCategories CategorySeeder
	eventBus       *event_bus.EventBus
	clock          utils.Clock
}

func NewService(repo Repository, guard collaborator.Guard, seedCategories CategorySeeder, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, seedCategories: seedCategories, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) ListProjects(ctx context.Context, includeArchived bool) ([]Project, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListProjects(ctx, userId, includeArchived)
}

func (s *ServiceImpl) GetProject(ctx context.Context, projectId int) (Project, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current user: %w", err)
	}
	p, err := s.repo.GetProject(ctx, userId, projectId)
	if errors.Is(err, ErrProjectNotFound) {
		return Project{}, collaborator.ErrForbidden
	}
	return p, err
}

func (s *ServiceImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := project.normalize(current.Currency); err != nil {
		return Project{}, err
	}
	if project.StartDate.IsZero() {
		project.StartDate = utils.MonthStart(s.clock.Now())
	} else {
		project.StartDate = utils.TruncateDay(project.StartDate)
	}
	project.OwnerId = current.Id
	project.Archived = false

	created, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		return Project{}, err
	}
	log.Infof("user %d created project %d", current.Id, created.Id)

	if s.seedCategories != nil {
		if err := s.seedCategories(ctx, created.Id); err != nil {
			// the project is usable without defaults, categories can be added by hand
			log.Warnf("failed to seed default categories of project %d: %v", created.Id, err)
		}
	}
	return created, nil
}

func (s *ServiceImpl) UpdateProject(ctx context.Context, project Project) (Project, error) {
	if _, err := s.guard.RequireRole(ctx, project.Id, collaborator.RoleEditor); err != nil {
		return Project{}, err
	}
	existing, err := s.GetProject(ctx, project.Id)
	if err != nil {
		return Project{}, err
	}
	if err := project.normalize(existing.Currency); err != nil {
		return Project{}, err
	}
	if project.StartDate.IsZero() {
		project.StartDate = existing.StartDate
	} else {
		project.StartDate = utils.TruncateDay(project.StartDate)
	}
	updated, err := s.repo.UpdateProject(ctx, project)
	if err != nil {
		return Project{}, err
	}
	if !updated {
		return Project{}, ErrProjectNotFound
	}
	return s.GetProject(ctx, project.Id)
}

func (s *ServiceImpl) ArchiveProject(ctx context.Context, projectId int, archived bool) (Project, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleOwner); err != nil {
		return Project{}, err
	}
	updated, err := s.repo.SetArchived(ctx, projectId, archived)
	if err != nil {
		return Project{}, err
	}
	if !updated {
		return Project{}, ErrProjectNotFound
	}
	return s.GetProject(ctx, projectId)
}

func (s *ServiceImpl) DeleteProject(ctx context.Context, projectId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleOwner); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProject(ctx, projectId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProjectNotFound
	}
	err = s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.ProjectDeleted, event_bus.ProjectDeletedPayload{ProjectId: projectId}))
	if err != nil {
		log.Errorf("failed to publish deletion of project %d: %v", projectId, err)
	}
	return nil
}
