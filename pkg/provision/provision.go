package provision

import (
	"sort"
	"time"

	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/shopspring/decimal"
)

// FundPosition is the fund of one provision entry.
type FundPosition struct {
	EntryId     int
	EntryName   string
	Supplier    string
	Provisioned decimal.Decimal
	PaidOut     decimal.Decimal
	Balance     decimal.Decimal
}

// SupplierFund groups the positions of entries sharing a supplier.
type SupplierFund struct {
	Supplier    string
	Provisioned decimal.Decimal
	PaidOut     decimal.Decimal
	Balance     decimal.Decimal
	Entries     []FundPosition
}

type Summary struct {
	AsOf      time.Time
	Suppliers []SupplierFund
	Total     FundPosition
}

// Aggregate reduces the payment lines onto the provision entries among
// entries. Lines of other entries and standard payments are ignored.
func Aggregate(asOf time.Time, entries []entry.Entry, lines []actual.PaymentLine) Summary {
	positions := make(map[int]*FundPosition)
	order := make([]int, 0)
	for _, e := range entries {
		if !e.IsProvision {
			continue
		}
		positions[e.Id] = &FundPosition{
			EntryId:     e.Id,
			EntryName:   e.Name,
			Supplier:    e.Supplier,
			Provisioned: decimal.Zero,
			PaidOut:     decimal.Zero,
		}
		order = append(order, e.Id)
	}

	for _, line := range lines {
		position, ok := positions[line.EntryId]
		if !ok || line.Date.After(asOf) {
			continue
		}
		switch line.Kind {
		case actual.KindProvision:
			position.Provisioned = position.Provisioned.Add(line.Amount)
		case actual.KindPayout:
			position.PaidOut = position.PaidOut.Add(line.Amount)
		}
	}

	bySupplier := make(map[string]*SupplierFund)
	total := FundPosition{Provisioned: decimal.Zero, PaidOut: decimal.Zero, Balance: decimal.Zero}
	for _, id := range order {
		position := positions[id]
		position.Balance = position.Provisioned.Sub(position.PaidOut)

		fund, ok := bySupplier[position.Supplier]
		if !ok {
			fund = &SupplierFund{
				Supplier:    position.Supplier,
				Provisioned: decimal.Zero,
				PaidOut:     decimal.Zero,
				Balance:     decimal.Zero,
				Entries:     make([]FundPosition, 0),
			}
			bySupplier[position.Supplier] = fund
		}
		fund.Provisioned = fund.Provisioned.Add(position.Provisioned)
		fund.PaidOut = fund.PaidOut.Add(position.PaidOut)
		fund.Balance = fund.Balance.Add(position.Balance)
		fund.Entries = append(fund.Entries, *position)

		total.Provisioned = total.Provisioned.Add(position.Provisioned)
		total.PaidOut = total.PaidOut.Add(position.PaidOut)
		total.Balance = total.Balance.Add(position.Balance)
	}

	suppliers := make([]SupplierFund, 0, len(bySupplier))
	for _, fund := range bySupplier {
		suppliers = append(suppliers, *fund)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].Supplier < suppliers[j].Supplier })
	return Summary{AsOf: asOf, Suppliers: suppliers, Total: total}
}
