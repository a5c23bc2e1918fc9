package cashaccount

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Movement is a signed cash movement the stub sums for balances.
type Movement struct {
	AccountId int
	Date      time.Time
	Amount    decimal.Decimal
}

type RepositoryStub struct {
	accounts  map[int]CashAccount
	nextId    int
	Movements []Movement
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{accounts: map[int]CashAccount{}}
}

func (s *RepositoryStub) ListAccounts(ctx context.Context, projectId int, includeArchived bool) ([]CashAccount, error) {
	accounts := make([]CashAccount, 0)
	for _, a := range s.accounts {
		if a.ProjectId == projectId && (includeArchived || !a.Archived) {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Id < accounts[j].Id })
	return accounts, nil
}

func (s *RepositoryStub) GetAccount(ctx context.Context, projectId int, accountId int) (CashAccount, error) {
	a, ok := s.accounts[accountId]
	if !ok || a.ProjectId != projectId {
		return CashAccount{}, ErrAccountNotFound
	}
	return a, nil
}

func (s *RepositoryStub) CreateAccount(ctx context.Context, account CashAccount) (CashAccount, error) {
	s.nextId++
	account.Id = s.nextId
	s.accounts[account.Id] = account
	return account, nil
}

func (s *RepositoryStub) UpdateAccount(ctx context.Context, account CashAccount) (bool, error) {
	if _, err := s.GetAccount(ctx, account.ProjectId, account.Id); err != nil {
		return false, nil
	}
	s.accounts[account.Id] = account
	return true, nil
}

func (s *RepositoryStub) DeleteAccount(ctx context.Context, projectId int, accountId int) (bool, error) {
	if _, err := s.GetAccount(ctx, projectId, accountId); err != nil {
		return false, nil
	}
	delete(s.accounts, accountId)
	return true, nil
}

func (s *RepositoryStub) CountPayments(ctx context.Context, accountId int) (int, error) {
	count := 0
	for _, m := range s.Movements {
		if m.AccountId == accountId {
			count++
		}
	}
	return count, nil
}

func (s *RepositoryStub) NetMovement(ctx context.Context, accountId int, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range s.Movements {
		if m.AccountId == accountId && !m.Date.Before(from) && !m.Date.After(to) {
			total = total.Add(m.Amount)
		}
	}
	return total, nil
}
