package scenario

import (
	"context"
	"errors"
	"strings"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListScenarios(ctx context.Context, projectId int) ([]Scenario, error)
	GetScenario(ctx context.Context, projectId int, scenarioId int) (Scenario, error)
	CreateScenario(ctx context.Context, scenario Scenario) (Scenario, error)
	UpdateScenario(ctx context.Context, scenario Scenario) (Scenario, error)
	DeleteScenario(ctx context.Context, projectId int, scenarioId int) error
	// Duplicate copies the scenario with its entries. An empty name becomes
	// "<source name> (copy)".
	Duplicate(ctx context.Context, projectId int, scenarioId int, name string) (Scenario, error)
}

type ServiceImpl struct {
	repo     Repository
	guard    collaborator.Guard
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, guard collaborator.Guard, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, eventBus: eventBus}
}

func (s *ServiceImpl) ListScenarios(ctx context.Context, projectId int) ([]Scenario, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListScenarios(ctx, projectId)
}

func (s *ServiceImpl) GetScenario(ctx context.Context, projectId int, scenarioId int) (Scenario, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Scenario{}, err
	}
	return s.repo.GetScenario(ctx, projectId, scenarioId)
}

func (s *ServiceImpl) CreateScenario(ctx context.Context, scenario Scenario) (Scenario, error) {
	if _, err := s.guard.RequireRole(ctx, scenario.ProjectId, collaborator.RoleEditor); err != nil {
		return Scenario{}, err
	}
	if err := scenario.normalize(); err != nil {
		return Scenario{}, err
	}
	return s.repo.CreateScenario(ctx, scenario)
}

func (s *ServiceImpl) UpdateScenario(ctx context.Context, scenario Scenario) (Scenario, error) {
	if _, err := s.guard.RequireRole(ctx, scenario.ProjectId, collaborator.RoleEditor); err != nil {
		return Scenario{}, err
	}
	if err := scenario.normalize(); err != nil {
		return Scenario{}, err
	}
	updated, err := s.repo.UpdateScenario(ctx, scenario)
	if err != nil {
		return Scenario{}, err
	}
	if !updated {
		return Scenario{}, ErrScenarioNotFound
	}
	return s.repo.GetScenario(ctx, scenario.ProjectId, scenario.Id)
}

func (s *ServiceImpl) DeleteScenario(ctx context.Context, projectId int, scenarioId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteScenario(ctx, projectId, scenarioId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrScenarioNotFound
	}
	err = s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.ScenarioDeleted, event_bus.ScenarioDeletedPayload{
		ProjectId:  projectId,
		ScenarioId: scenarioId,
	}))
	if err != nil {
		log.Errorf("failed to publish deletion of scenario %d: %v", scenarioId, err)
	}
	return nil
}

func (s *ServiceImpl) Duplicate(ctx context.Context, projectId int, scenarioId int, name string) (Scenario, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return Scenario{}, err
	}
	source, err := s.repo.GetScenario(ctx, projectId, scenarioId)
	if err != nil {
		return Scenario{}, err
	}
	target := Scenario{ProjectId: projectId, Name: strings.TrimSpace(name), Description: source.Description}
	if target.Name == "" {
		target.Name = source.Name + " (copy)"
	}
	log.Debugf("Duplicating scenario %d of project %d as %q", scenarioId, projectId, target.Name)
	return s.repo.DuplicateScenario(ctx, scenarioId, target)
}

// Exists checks that the scenario belongs to the project without an access
// check of its own. Entry writes use it after their own guard.
func (s *ServiceImpl) Exists(ctx context.Context, projectId int, scenarioId int) error {
	_, err := s.repo.GetScenario(ctx, projectId, scenarioId)
	if errors.Is(err, ErrScenarioNotFound) {
		return rest.Invalid("scenarioId", "Scenario does not exist")
	}
	return err
}
