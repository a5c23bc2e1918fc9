package project

import (
	"context"
	"sort"
	"strings"

	"github.com/cashplan/cashplan/pkg/collaborator"
)

// RepositoryStub keeps projects in memory and resolves roles from the
// collaborator stub so both stay consistent in tests.
type RepositoryStub struct {
	projects      map[int]Project
	collaborators *collaborator.RepositoryStub
	nextId        int
}

func NewRepositoryStub(collaborators *collaborator.RepositoryStub) *RepositoryStub {
	return &RepositoryStub{projects: map[int]Project{}, collaborators: collaborators}
}

func (s *RepositoryStub) withRole(ctx context.Context, userId int, p Project) (Project, bool) {
	role, err := s.collaborators.GetRole(ctx, p.Id, userId)
	if err != nil {
		return Project{}, false
	}
	p.Role = role
	return p, true
}

func (s *RepositoryStub) ListProjects(ctx context.Context, userId int, includeArchived bool) ([]Project, error) {
	projects := make([]Project, 0)
	for _, p := range s.projects {
		if p.Archived && !includeArchived {
			continue
		}
		if withRole, ok := s.withRole(ctx, userId, p); ok {
			projects = append(projects, withRole)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Archived != projects[j].Archived {
			return !projects[i].Archived
		}
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
	return projects, nil
}

func (s *RepositoryStub) GetProject(ctx context.Context, userId int, projectId int) (Project, error) {
	p, ok := s.projects[projectId]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	withRole, ok := s.withRole(ctx, userId, p)
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return withRole, nil
}

func (s *RepositoryStub) GetName(ctx context.Context, projectId int) (string, error) {
	p, ok := s.projects[projectId]
	if !ok {
		return "", ErrProjectNotFound
	}
	return p.Name, nil
}

func (s *RepositoryStub) CreateProject(ctx context.Context, project Project) (Project, error) {
	s.nextId++
	project.Id = s.nextId
	project.Role = ""
	s.projects[project.Id] = project
	if err := s.collaborators.AddCollaborator(ctx, project.Id, project.OwnerId, collaborator.RoleOwner); err != nil {
		return Project{}, err
	}
	project.Role = collaborator.RoleOwner
	return project, nil
}

func (s *RepositoryStub) UpdateProject(ctx context.Context, project Project) (bool, error) {
	existing, ok := s.projects[project.Id]
	if !ok {
		return false, nil
	}
	existing.Name = project.Name
	existing.Description = project.Description
	existing.Currency = project.Currency
	existing.StartDate = project.StartDate
	s.projects[project.Id] = existing
	return true, nil
}

func (s *RepositoryStub) SetArchived(ctx context.Context, projectId int, archived bool) (bool, error) {
	p, ok := s.projects[projectId]
	if !ok {
		return false, nil
	}
	p.Archived = archived
	s.projects[projectId] = p
	return true, nil
}

func (s *RepositoryStub) DeleteProject(ctx context.Context, projectId int) (bool, error) {
	if _, ok := s.projects[projectId]; !ok {
		return false, nil
	}
	delete(s.projects, projectId)
	return true, nil
}
