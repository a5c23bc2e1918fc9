package loan

import (
	"errors"
	"strings"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrInvalidKind  = errors.New("invalid loan kind")
)

type Kind string

const (
	// KindBorrowing is money the project owes; repayments are expenses.
	KindBorrowing Kind = "borrowing"
	// KindLending is money owed to the project; repayments are income.
	KindLending Kind = "lending"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBorrowing, KindLending:
		return Kind(s), nil
	}
	return "", ErrInvalidKind
}

type Loan struct {
	Id             int
	ProjectId      int
	Kind           Kind
	Name           string
	Counterparty   string
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	MonthlyPayment decimal.Decimal
	TermMonths     int
	StartDate      time.Time
	// EntryId is the first budget entry linked to the loan.
	EntryId *int
}

// Status is the position of a loan at the end of AsOf.
type Status struct {
	AsOf            time.Time
	PrincipalRepaid decimal.Decimal
	InterestPaid    decimal.Decimal
	Remaining       decimal.Decimal
	TotalCost       decimal.Decimal
	TotalInterest   decimal.Decimal
	PaymentsMade    int
	PaymentsLeft    int
	EndDate         time.Time
}

func (l Loan) TotalCost() decimal.Decimal {
	return l.MonthlyPayment.Mul(decimal.NewFromInt(int64(l.TermMonths)))
}

// EndDate is the date of the last scheduled repayment.
func (l Loan) EndDate() time.Time {
	return entry.AddMonthsClamped(l.StartDate, l.TermMonths-1)
}

// principalRatio is the share of every repayment that goes to principal.
func (l Loan) principalRatio() decimal.Decimal {
	total := l.TotalCost()
	if total.IsZero() {
		return decimal.Zero
	}
	return l.Principal.Div(total)
}

// StatusOf allocates each repayment to principal by the loan's principal
// ratio and the rest to interest.
func (l Loan) StatusOf(asOf time.Time, repayments []decimal.Decimal) Status {
	ratio := l.principalRatio()
	repaid := decimal.Zero
	paid := decimal.Zero
	for _, amount := range repayments {
		paid = paid.Add(amount)
		repaid = repaid.Add(amount.Mul(ratio))
	}
	repaid = repaid.Round(2)
	total := l.TotalCost()
	return Status{
		AsOf:            asOf,
		PrincipalRepaid: repaid,
		InterestPaid:    paid.Sub(repaid),
		Remaining:       decimal.Max(decimal.Zero, l.Principal.Sub(repaid)),
		TotalCost:       total,
		TotalInterest:   total.Sub(l.Principal),
		PaymentsMade:    len(repayments),
		PaymentsLeft:    max(0, l.TermMonths-len(repayments)),
		EndDate:         l.EndDate(),
	}
}

func (l *Loan) normalize() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return rest.Invalid("name", "Loan name is required")
	}
	if _, err := ParseKind(string(l.Kind)); err != nil {
		return rest.Invalid("kind", "Kind must be borrowing or lending")
	}
	l.Counterparty = strings.TrimSpace(l.Counterparty)
	if !l.Principal.IsPositive() {
		return rest.Invalid("principal", "Principal must be greater than zero")
	}
	if !l.MonthlyPayment.IsPositive() {
		return rest.Invalid("monthlyPayment", "Monthly payment must be greater than zero")
	}
	if l.TermMonths <= 0 {
		return rest.Invalid("termMonths", "Term must be at least one month")
	}
	if l.InterestRate.IsNegative() {
		return rest.Invalid("interestRate", "Interest rate cannot be negative")
	}
	if l.StartDate.IsZero() {
		return rest.Invalid("startDate", "Start date is required")
	}
	l.Principal = l.Principal.Round(2)
	l.MonthlyPayment = l.MonthlyPayment.Round(2)
	if l.TotalCost().LessThan(l.Principal) {
		return rest.Invalid("monthlyPayment", "Monthly payments over the term do not cover the principal")
	}
	return nil
}
