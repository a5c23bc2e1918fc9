package provision

import (
	"testing"
	"time"

	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func line(entryId int, date time.Time, value string, kind actual.Kind) actual.PaymentLine {
	return actual.PaymentLine{
		Payment: actual.Payment{Date: date, Amount: decimal.RequireFromString(value), Kind: kind},
		EntryId: entryId,
	}
}

func assertAmount(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(got), "expected %s, got %s", expected, got)
}

func TestAggregate(t *testing.T) {
	entries := []entry.Entry{
		{Id: 1, Name: "Car insurance", Supplier: "Insurer", IsProvision: true},
		{Id: 2, Name: "Home insurance", Supplier: "Insurer", IsProvision: true},
		{Id: 3, Name: "Property tax", Supplier: "", IsProvision: true},
		{Id: 4, Name: "Rent", Supplier: "Landlord"},
	}

	t.Run("should group funds by supplier", func(t *testing.T) {
		// given
		lines := []actual.PaymentLine{
			line(1, day(2026, 1, 10), "100", actual.KindProvision),
			line(1, day(2026, 2, 10), "100", actual.KindProvision),
			line(1, day(2026, 3, 1), "150", actual.KindPayout),
			line(2, day(2026, 1, 10), "50", actual.KindProvision),
			line(3, day(2026, 1, 10), "80", actual.KindProvision),
			line(4, day(2026, 1, 1), "900", actual.KindStandard),
		}

		// when
		summary := Aggregate(day(2026, 12, 31), entries, lines)

		// then
		require.Len(t, summary.Suppliers, 2)
		assert.Equal(t, "", summary.Suppliers[0].Supplier)
		assertAmount(t, "80", summary.Suppliers[0].Balance)

		insurer := summary.Suppliers[1]
		assert.Equal(t, "Insurer", insurer.Supplier)
		require.Len(t, insurer.Entries, 2)
		assertAmount(t, "250", insurer.Provisioned)
		assertAmount(t, "150", insurer.PaidOut)
		assertAmount(t, "100", insurer.Balance)
		assertAmount(t, "50", insurer.Entries[0].Balance)

		assertAmount(t, "330", summary.Total.Provisioned)
		assertAmount(t, "180", summary.Total.Balance)
	})

	t.Run("should ignore payments after the date", func(t *testing.T) {
		lines := []actual.PaymentLine{
			line(1, day(2026, 1, 10), "100", actual.KindProvision),
			line(1, day(2026, 3, 1), "100", actual.KindPayout),
		}

		summary := Aggregate(day(2026, 2, 28), entries, lines)

		assertAmount(t, "100", summary.Total.Balance)
		assertAmount(t, "0", summary.Total.PaidOut)
	})

	t.Run("should list provision entries without payments", func(t *testing.T) {
		summary := Aggregate(day(2026, 1, 1), entries, nil)

		require.Len(t, summary.Suppliers, 2)
		assertAmount(t, "0", summary.Total.Balance)
	})
}
