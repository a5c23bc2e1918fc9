package actual

import (
	"errors"
	"time"

	"github.com/cashplan/cashplan/pkg/category"
	"github.com/shopspring/decimal"
)

var (
	ErrActualNotFound  = errors.New("actual not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidKind     = errors.New("invalid payment kind")
)

type Kind string

const (
	KindStandard Kind = "standard"
	// KindProvision moves money from a cash account into the provision fund.
	KindProvision Kind = "provision"
	// KindPayout is paid out of the provision fund and does not move cash.
	KindPayout Kind = "payout"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStandard, KindProvision, KindPayout:
		return Kind(s), nil
	case "":
		return KindStandard, nil
	}
	return "", ErrInvalidKind
}

type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type Actual struct {
	Id          int
	ProjectId   int
	EntryId     int
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Payments    []Payment
}

type Payment struct {
	Id            int
	ActualId      int
	Date          time.Time
	Amount        decimal.Decimal
	CashAccountId *int
	Kind          Kind
}

// PaymentLine is a payment with the entry it settles, as used by the
// aggregations over a whole project.
type PaymentLine struct {
	Payment
	EntryId   int
	EntryType category.Type
}

// Paid sums the payments that settle the actual. Provision contributions
// only fill the fund and are left out.
func (a Actual) Paid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range a.Payments {
		if p.Kind != KindProvision {
			paid = paid.Add(p.Amount)
		}
	}
	return paid
}

func (a Actual) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, a.Amount.Sub(a.Paid()))
}

func (a Actual) Status() Status {
	paid := a.Paid()
	switch {
	case paid.IsZero():
		return StatusPending
	case paid.GreaterThanOrEqual(a.Amount):
		return StatusPaid
	default:
		return StatusPartial
	}
}
