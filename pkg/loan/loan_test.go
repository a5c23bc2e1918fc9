package loan

import (
	"testing"
	"time"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func carLoan() Loan {
	return Loan{
		Kind:           KindBorrowing,
		Name:           "Car",
		Principal:      amount("10000"),
		MonthlyPayment: amount("500"),
		TermMonths:     24,
		StartDate:      day(2026, 1, 15),
	}
}

func repeat(value string, n int) []decimal.Decimal {
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = amount(value)
	}
	return amounts
}

func TestLoan_StatusOf(t *testing.T) {
	t.Run("should split repayments by the principal ratio", func(t *testing.T) {
		// when
		status := carLoan().StatusOf(day(2026, 4, 1), repeat("500", 3))

		// then
		assert.True(t, amount("1250").Equal(status.PrincipalRepaid), "repaid %s", status.PrincipalRepaid)
		assert.True(t, amount("250").Equal(status.InterestPaid), "interest %s", status.InterestPaid)
		assert.True(t, amount("8750").Equal(status.Remaining), "remaining %s", status.Remaining)
		assert.True(t, amount("12000").Equal(status.TotalCost))
		assert.True(t, amount("2000").Equal(status.TotalInterest))
		assert.Equal(t, 3, status.PaymentsMade)
		assert.Equal(t, 21, status.PaymentsLeft)
		assert.Equal(t, day(2027, 12, 15), status.EndDate)
	})

	t.Run("should clamp the remaining balance at zero", func(t *testing.T) {
		l := Loan{Principal: amount("1000"), MonthlyPayment: amount("100"), TermMonths: 10, StartDate: day(2026, 1, 1)}

		status := l.StatusOf(day(2027, 1, 1), repeat("100", 11))

		assert.True(t, status.Remaining.IsZero())
		assert.Equal(t, 0, status.PaymentsLeft)
	})

	t.Run("should report the full principal before any repayment", func(t *testing.T) {
		status := carLoan().StatusOf(day(2026, 1, 1), nil)

		assert.True(t, amount("10000").Equal(status.Remaining))
		assert.Equal(t, 24, status.PaymentsLeft)
	})
}

func TestLoan_Normalize(t *testing.T) {
	cases := []struct {
		name   string
		modify func(l *Loan)
		field  string
	}{
		{"empty name", func(l *Loan) { l.Name = " " }, "name"},
		{"unknown kind", func(l *Loan) { l.Kind = "leasing" }, "kind"},
		{"zero principal", func(l *Loan) { l.Principal = decimal.Zero }, "principal"},
		{"zero monthly payment", func(l *Loan) { l.MonthlyPayment = decimal.Zero }, "monthlyPayment"},
		{"zero term", func(l *Loan) { l.TermMonths = 0 }, "termMonths"},
		{"negative rate", func(l *Loan) { l.InterestRate = amount("-0.5") }, "interestRate"},
		{"missing start", func(l *Loan) { l.StartDate = time.Time{} }, "startDate"},
		{"payments below principal", func(l *Loan) { l.TermMonths = 12 }, "monthlyPayment"},
	}
	for _, tc := range cases {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			l := carLoan()
			tc.modify(&l)

			err := l.normalize()

			var validationErr *rest.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}

	t.Run("should accept payments covering exactly the principal", func(t *testing.T) {
		l := carLoan()
		l.TermMonths = 20

		assert.NoError(t, l.normalize())
	})
}
