package cashaccount

import (
	"errors"
	"strings"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound = errors.New("cash account not found")
	ErrAccountInUse    = errors.New("cash account is referenced by payments")
)

type CashAccount struct {
	Id                 int
	ProjectId          int
	Name               string
	Bank               string
	InitialBalance     decimal.Decimal
	InitialBalanceDate time.Time
	Archived           bool
}

// Balance is the position of an account at the end of AsOf.
type Balance struct {
	AccountId int
	Name      string
	AsOf      time.Time
	Balance   decimal.Decimal
}

func (a *CashAccount) normalize() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return rest.Invalid("name", "Account name is required")
	}
	a.Bank = strings.TrimSpace(a.Bank)
	if a.InitialBalanceDate.IsZero() {
		return rest.Invalid("initialBalanceDate", "Initial balance date is required")
	}
	a.InitialBalance = a.InitialBalance.Round(2)
	return nil
}
