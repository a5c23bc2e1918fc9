package cashaccount

import (
	"context"
	"time"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListAccounts(ctx context.Context, projectId int, includeArchived bool) ([]CashAccount, error)
	GetAccount(ctx context.Context, projectId int, accountId int) (CashAccount, error)
	CreateAccount(ctx context.Context, account CashAccount) (CashAccount, error)
	UpdateAccount(ctx context.Context, account CashAccount) (CashAccount, error)
	DeleteAccount(ctx context.Context, projectId int, accountId int) error
	Balance(ctx context.Context, projectId int, accountId int, asOf time.Time) (Balance, error)
	// Balances returns the balance of every account of the project, archived included.
	Balances(ctx context.Context, projectId int, asOf time.Time) ([]Balance, error)
}

type ServiceImpl struct {
	repo     Repository
	guard    collaborator.Guard
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, guard collaborator.Guard, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, eventBus: eventBus}
}

func (s *ServiceImpl) ListAccounts(ctx context.Context, projectId int, includeArchived bool) ([]CashAccount, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx, projectId, includeArchived)
}

func (s *ServiceImpl) GetAccount(ctx context.Context, projectId int, accountId int) (CashAccount, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return CashAccount{}, err
	}
	return s.repo.GetAccount(ctx, projectId, accountId)
}

func (s *ServiceImpl) CreateAccount(ctx context.Context, account CashAccount) (CashAccount, error) {
	if _, err := s.guard.RequireRole(ctx, account.ProjectId, collaborator.RoleEditor); err != nil {
		return CashAccount{}, err
	}
	if err := account.normalize(); err != nil {
		return CashAccount{}, err
	}
	account.InitialBalanceDate = utils.TruncateDay(account.InitialBalanceDate)
	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return CashAccount{}, err
	}
	s.publishChanged(ctx, created.ProjectId, created.Id)
	return created, nil
}

func (s *ServiceImpl) UpdateAccount(ctx context.Context, account CashAccount) (CashAccount, error) {
	if _, err := s.guard.RequireRole(ctx, account.ProjectId, collaborator.RoleEditor); err != nil {
		return CashAccount{}, err
	}
	if err := account.normalize(); err != nil {
		return CashAccount{}, err
	}
	account.InitialBalanceDate = utils.TruncateDay(account.InitialBalanceDate)
	updated, err := s.repo.UpdateAccount(ctx, account)
	if err != nil {
		return CashAccount{}, err
	}
	if !updated {
		return CashAccount{}, ErrAccountNotFound
	}
	s.publishChanged(ctx, account.ProjectId, account.Id)
	return account, nil
}

func (s *ServiceImpl) DeleteAccount(ctx context.Context, projectId int, accountId int) error {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleEditor); err != nil {
		return err
	}
	if _, err := s.repo.GetAccount(ctx, projectId, accountId); err != nil {
		return err
	}
	payments, err := s.repo.CountPayments(ctx, accountId)
	if err != nil {
		return err
	}
	if payments > 0 {
		log.Debugf("cash account %d has %d payments, refusing delete", accountId, payments)
		return ErrAccountInUse
	}
	deleted, err := s.repo.DeleteAccount(ctx, projectId, accountId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}
	s.publishChanged(ctx, projectId, accountId)
	return nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, projectId int, accountId int) {
	err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.AccountChanged, event_bus.AccountChangedPayload{
		ProjectId: projectId,
		AccountId: accountId,
	}))
	if err != nil {
		log.Errorf("failed to publish change of cash account %d: %v", accountId, err)
	}
}

func (s *ServiceImpl) Balance(ctx context.Context, projectId int, accountId int, asOf time.Time) (Balance, error) {
	account, err := s.GetAccount(ctx, projectId, accountId)
	if err != nil {
		return Balance{}, err
	}
	return s.balance(ctx, account, asOf)
}

func (s *ServiceImpl) Balances(ctx context.Context, projectId int, asOf time.Time) ([]Balance, error) {
	accounts, err := s.ListAccounts(ctx, projectId, true)
	if err != nil {
		return nil, err
	}
	balances := make([]Balance, 0, len(accounts))
	for _, account := range accounts {
		b, err := s.balance(ctx, account, asOf)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// balance is the initial balance plus the movements from the initial
// balance date through asOf. Before that date the account holds nothing.
func (s *ServiceImpl) balance(ctx context.Context, account CashAccount, asOf time.Time) (Balance, error) {
	asOf = utils.TruncateDay(asOf)
	b := Balance{AccountId: account.Id, Name: account.Name, AsOf: asOf, Balance: decimal.Zero}
	if asOf.Before(account.InitialBalanceDate) {
		return b, nil
	}
	movement, err := s.repo.NetMovement(ctx, account.Id, account.InitialBalanceDate, asOf)
	if err != nil {
		return Balance{}, err
	}
	b.Balance = account.InitialBalance.Add(movement)
	return b, nil
}
