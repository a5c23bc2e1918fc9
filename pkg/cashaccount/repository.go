package cashaccount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListAccounts(ctx context.Context, projectId int, includeArchived bool) ([]CashAccount, error)
	GetAccount(ctx context.Context, projectId int, accountId int) (CashAccount, error)
	CreateAccount(ctx context.Context, account CashAccount) (CashAccount, error)
	UpdateAccount(ctx context.Context, account CashAccount) (bool, error)
	DeleteAccount(ctx context.Context, projectId int, accountId int) (bool, error)
	CountPayments(ctx context.Context, accountId int) (int, error)
	// NetMovement sums payments through the account dated within [from, to];
	// income payments count positive, everything else negative, payouts not at all.
	NetMovement(ctx context.Context, accountId int, from, to time.Time) (decimal.Decimal, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectAccount = `SELECT id, project_id, name, bank, initial_balance, initial_balance_date, archived FROM cash_account`

func scanAccount(row pgx.Row) (CashAccount, error) {
	var a CashAccount
	err := row.Scan(&a.Id, &a.ProjectId, &a.Name, &a.Bank, &a.InitialBalance, &a.InitialBalanceDate, &a.Archived)
	return a, err
}

func (r *RepositoryImpl) ListAccounts(ctx context.Context, projectId int, includeArchived bool) ([]CashAccount, error) {
	query := selectAccount + ` WHERE project_id = $1 AND ($2 OR NOT archived) ORDER BY archived, lower(name), id`
	rows, err := r.db.Query(ctx, query, projectId, includeArchived)
	if err != nil {
		err := fmt.Errorf("could not query cash accounts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	accounts := make([]CashAccount, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return accounts, nil
}

func (r *RepositoryImpl) GetAccount(ctx context.Context, projectId int, accountId int) (CashAccount, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE project_id = $1 AND id = $2`, projectId, accountId))
	if errors.Is(err, pgx.ErrNoRows) {
		return CashAccount{}, ErrAccountNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get cash account: %w", err)
		log.Error(err)
		return CashAccount{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) CreateAccount(ctx context.Context, account CashAccount) (CashAccount, error) {
	query := `INSERT INTO cash_account (project_id, name, bank, initial_balance, initial_balance_date, archived)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		account.ProjectId,
		account.Name,
		account.Bank,
		account.InitialBalance,
		account.InitialBalanceDate,
		account.Archived,
	).Scan(&account.Id)
	if err != nil {
		err := fmt.Errorf("could not create cash account: %w", err)
		log.Error(err)
		return CashAccount{}, err
	}
	return account, nil
}

func (r *RepositoryImpl) UpdateAccount(ctx context.Context, account CashAccount) (bool, error) {
	query := `UPDATE cash_account
			  SET name = $1, bank = $2, initial_balance = $3, initial_balance_date = $4, archived = $5
			  WHERE project_id = $6 AND id = $7`
	result, err := r.db.Exec(ctx, query,
		account.Name,
		account.Bank,
		account.InitialBalance,
		account.InitialBalanceDate,
		account.Archived,
		account.ProjectId,
		account.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update cash account: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteAccount(ctx context.Context, projectId int, accountId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM cash_account WHERE project_id = $1 AND id = $2`, projectId, accountId)
	if err != nil {
		err := fmt.Errorf("could not delete cash account: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) CountPayments(ctx context.Context, accountId int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM payment WHERE cash_account_id = $1`, accountId).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not count payments of cash account: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) NetMovement(ctx context.Context, accountId int, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN e.type = 'income' THEN p.amount ELSE -p.amount END), 0)
			  FROM payment p
			  JOIN actual a ON a.id = p.actual_id
			  JOIN budget_entry e ON e.id = a.entry_id
			  WHERE p.cash_account_id = $1 AND p.kind <> 'payout' AND p.date >= $2 AND p.date <= $3`
	var movement decimal.Decimal
	if err := r.db.QueryRow(ctx, query, accountId, from, to).Scan(&movement); err != nil {
		err := fmt.Errorf("could not sum payments of cash account: %w", err)
		log.Error(err)
		return decimal.Zero, err
	}
	return movement, nil
}
