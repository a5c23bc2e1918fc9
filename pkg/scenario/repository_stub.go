package scenario

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	scenarios map[int]Scenario
	nextId    int
	// Entries counts the entries per scenario; duplication copies the count.
	Entries map[int]int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{scenarios: map[int]Scenario{}, Entries: map[int]int{}}
}

func (s *RepositoryStub) ListScenarios(ctx context.Context, projectId int) ([]Scenario, error) {
	scenarios := make([]Scenario, 0)
	for _, sc := range s.scenarios {
		if sc.ProjectId == projectId {
			scenarios = append(scenarios, sc)
		}
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Id < scenarios[j].Id })
	return scenarios, nil
}

func (s *RepositoryStub) GetScenario(ctx context.Context, projectId int, scenarioId int) (Scenario, error) {
	sc, ok := s.scenarios[scenarioId]
	if !ok || sc.ProjectId != projectId {
		return Scenario{}, ErrScenarioNotFound
	}
	return sc, nil
}

func (s *RepositoryStub) CreateScenario(ctx context.Context, scenario Scenario) (Scenario, error) {
	s.nextId++
	scenario.Id = s.nextId
	scenario.Created = time.Now()
	s.scenarios[scenario.Id] = scenario
	return scenario, nil
}

func (s *RepositoryStub) UpdateScenario(ctx context.Context, scenario Scenario) (bool, error) {
	existing, ok := s.scenarios[scenario.Id]
	if !ok || existing.ProjectId != scenario.ProjectId {
		return false, nil
	}
	existing.Name = scenario.Name
	existing.Description = scenario.Description
	s.scenarios[scenario.Id] = existing
	return true, nil
}

func (s *RepositoryStub) DeleteScenario(ctx context.Context, projectId int, scenarioId int) (bool, error) {
	sc, ok := s.scenarios[scenarioId]
	if !ok || sc.ProjectId != projectId {
		return false, nil
	}
	delete(s.scenarios, scenarioId)
	delete(s.Entries, scenarioId)
	return true, nil
}

func (s *RepositoryStub) DuplicateScenario(ctx context.Context, sourceId int, target Scenario) (Scenario, error) {
	created, _ := s.CreateScenario(ctx, target)
	s.Entries[created.Id] = s.Entries[sourceId]
	return created, nil
}
