package collaborator

import (
	"context"
	"fmt"

	"github.com/cashplan/cashplan/pkg/user"
)

// GuardStub grants fixed roles per project to whoever is in the context.
// Used by the tests of project-scoped packages.
type GuardStub struct {
	Roles map[int]Role
}

func NewGuardStub() *GuardStub {
	return &GuardStub{Roles: map[int]Role{}}
}

func (g *GuardStub) Grant(projectId int, role Role) *GuardStub {
	g.Roles[projectId] = role
	return g
}

func (g *GuardStub) RequireRole(ctx context.Context, projectId int, min Role) (Role, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	role, ok := g.Roles[projectId]
	if !ok || !role.AtLeast(min) {
		return role, ErrForbidden
	}
	return role, nil
}
