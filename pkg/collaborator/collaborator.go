package collaborator

import (
	"errors"
	"net/http"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/user"
)

var (
	ErrForbidden               = errors.New("you do not have access to this project")
	ErrCollaboratorNotFound    = errors.New("collaborator not found")
	ErrAlreadyMember           = errors.New("user is already a collaborator of this project")
	ErrInvitationNotFound      = errors.New("invitation not found")
	ErrInvitationEmailMismatch = errors.New("invitation was sent to another email address")
	ErrOwnerImmutable          = errors.New("the project owner cannot be changed or removed")
	ErrInvalidRole             = errors.New("invalid role")
)

// AccessErrors maps the errors every project-scoped handler can meet.
var AccessErrors = []rest.Mapping{
	{Err: user.ErrNoUser, Status: http.StatusUnauthorized},
	{Err: ErrForbidden, Status: http.StatusForbidden},
}

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

func (r Role) rank() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleOwner:
		return 3
	}
	return 0
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.rank() > 0 && r.rank() >= min.rank()
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.rank() == 0 {
		return "", ErrInvalidRole
	}
	return r, nil
}

type Collaborator struct {
	ProjectId   int
	UserId      int
	Email       string
	DisplayName string
	Role        Role
}

type Invitation struct {
	Id         int
	ProjectId  int
	Email      string
	Role       Role
	Token      string
	CreatedBy  int
	Created    time.Time
	AcceptedAt *time.Time
}

// Permissions is what the client uses to decide which actions to offer.
type Permissions struct {
	CanEdit                bool
	CanComment             bool
	CanManageCollaborators bool
	CanDelete              bool
}

func PermissionsFor(r Role) Permissions {
	return Permissions{
		CanEdit:                r.AtLeast(RoleEditor),
		CanComment:             r.AtLeast(RoleViewer),
		CanManageCollaborators: r.AtLeast(RoleOwner),
		CanDelete:              r.AtLeast(RoleOwner),
	}
}
