package project

import (
	"errors"
	"strings"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
)

var ErrProjectNotFound = errors.New("project not found")

type Project struct {
	Id          int
	Name        string
	Description string
	Currency    string
	StartDate   time.Time
	OwnerId     int
	Archived    bool
	// Role is the current user's role on the project.
	Role collaborator.Role
}

// normalize trims user input and checks presence; fallbackCurrency fills an
// empty currency.
func (p *Project) normalize(fallbackCurrency string) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return rest.Invalid("name", "Project name is required")
	}
	p.Description = strings.TrimSpace(p.Description)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = fallbackCurrency
	}
	if len(p.Currency) != 3 {
		return rest.Invalid("currency", "Currency must be a 3-letter ISO code")
	}
	return nil
}
