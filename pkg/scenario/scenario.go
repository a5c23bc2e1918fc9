package scenario

import (
	"errors"
	"strings"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Scenario is an alternative plan. Its entries are budget entries carrying
// the scenario id; the base plan has no scenario.
type Scenario struct {
	Id          int
	ProjectId   int
	Name        string
	Description string
	Created     time.Time
}

func (s *Scenario) normalize() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return rest.Invalid("name", "Scenario name is required")
	}
	s.Description = strings.TrimSpace(s.Description)
	return nil
}
