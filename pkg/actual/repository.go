package actual

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cashplan/cashplan/pkg/category"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Filter struct {
	EntryId *int
	From    *time.Time
	To      *time.Time
}

type Repository interface {
	ListActuals(ctx context.Context, projectId int, filter Filter) ([]Actual, error)
	GetActual(ctx context.Context, projectId int, actualId int) (Actual, error)
	// CreateActual stores the actual with its initial payments in one transaction.
	CreateActual(ctx context.Context, actual Actual) (Actual, error)
	UpdateActual(ctx context.Context, actual Actual) (bool, error)
	DeleteActual(ctx context.Context, projectId int, actualId int) (bool, error)
	AddPayment(ctx context.Context, payment Payment) (Payment, error)
	UpdatePayment(ctx context.Context, payment Payment) (bool, error)
	DeletePayment(ctx context.Context, actualId int, paymentId int) (bool, error)
	// ListPaymentLines returns the payments of all actuals of the project
	// dated within the optional bounds.
	ListPaymentLines(ctx context.Context, projectId int, from, to *time.Time) ([]PaymentLine, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListActuals(ctx context.Context, projectId int, filter Filter) ([]Actual, error) {
	query := `SELECT id, project_id, entry_id, date, amount, description FROM actual
			  WHERE project_id = $1
				AND ($2::int IS NULL OR entry_id = $2)
				AND ($3::date IS NULL OR date >= $3)
				AND ($4::date IS NULL OR date <= $4)
			  ORDER BY date, id`
	rows, err := r.db.Query(ctx, query, projectId, filter.EntryId, filter.From, filter.To)
	if err != nil {
		err := fmt.Errorf("could not query actuals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	actuals := make([]Actual, 0)
	index := map[int]int{}
	ids := make([]int, 0)
	for rows.Next() {
		var a Actual
		if err := rows.Scan(&a.Id, &a.ProjectId, &a.EntryId, &a.Date, &a.Amount, &a.Description); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		a.Payments = make([]Payment, 0)
		index[a.Id] = len(actuals)
		ids = append(ids, a.Id)
		actuals = append(actuals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	if len(ids) == 0 {
		return actuals, nil
	}

	payments, err := r.paymentsOf(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		i := index[p.ActualId]
		actuals[i].Payments = append(actuals[i].Payments, p)
	}
	return actuals, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *RepositoryImpl) paymentsOf(ctx context.Context, q querier, actualIds []int) ([]Payment, error) {
	query := `SELECT id, actual_id, date, amount, cash_account_id, kind FROM payment
			  WHERE actual_id = ANY($1) ORDER BY date, id`
	rows, err := q.Query(ctx, query, actualIds)
	if err != nil {
		err := fmt.Errorf("could not query payments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		var kind string
		if err := rows.Scan(&p.Id, &p.ActualId, &p.Date, &p.Amount, &p.CashAccountId, &kind); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		p.Kind = Kind(kind)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *RepositoryImpl) GetActual(ctx context.Context, projectId int, actualId int) (Actual, error) {
	var a Actual
	err := r.db.QueryRow(ctx,
		`SELECT id, project_id, entry_id, date, amount, description FROM actual WHERE project_id = $1 AND id = $2`,
		projectId, actualId,
	).Scan(&a.Id, &a.ProjectId, &a.EntryId, &a.Date, &a.Amount, &a.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Actual{}, ErrActualNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get actual: %w", err)
		log.Error(err)
		return Actual{}, err
	}
	a.Payments, err = r.paymentsOf(ctx, r.db, []int{a.Id})
	if err != nil {
		return Actual{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) CreateActual(ctx context.Context, actual Actual) (Actual, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Actual{}, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO actual (project_id, entry_id, date, amount, description) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = tx.QueryRow(ctx, query, actual.ProjectId, actual.EntryId, actual.Date, actual.Amount, actual.Description).Scan(&actual.Id)
	if err != nil {
		err := fmt.Errorf("could not create actual: %w", err)
		log.Error(err)
		return Actual{}, err
	}

	for i := range actual.Payments {
		actual.Payments[i].ActualId = actual.Id
		if err := insertPayment(ctx, tx, &actual.Payments[i]); err != nil {
			return Actual{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Actual{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return actual, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertPayment(ctx context.Context, q queryRower, p *Payment) error {
	query := `INSERT INTO payment (actual_id, date, amount, cash_account_id, kind) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRow(ctx, query, p.ActualId, p.Date, p.Amount, p.CashAccountId, string(p.Kind)).Scan(&p.Id)
	if err != nil {
		err := fmt.Errorf("could not create payment: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) UpdateActual(ctx context.Context, actual Actual) (bool, error) {
	query := `UPDATE actual SET date = $1, amount = $2, description = $3 WHERE project_id = $4 AND id = $5`
	result, err := r.db.Exec(ctx, query, actual.Date, actual.Amount, actual.Description, actual.ProjectId, actual.Id)
	if err != nil {
		err := fmt.Errorf("could not update actual: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteActual(ctx context.Context, projectId int, actualId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM actual WHERE project_id = $1 AND id = $2`, projectId, actualId)
	if err != nil {
		err := fmt.Errorf("could not delete actual: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) AddPayment(ctx context.Context, payment Payment) (Payment, error) {
	if err := insertPayment(ctx, r.db, &payment); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (r *RepositoryImpl) UpdatePayment(ctx context.Context, payment Payment) (bool, error) {
	query := `UPDATE payment SET date = $1, amount = $2, cash_account_id = $3, kind = $4 WHERE actual_id = $5 AND id = $6`
	result, err := r.db.Exec(ctx, query, payment.Date, payment.Amount, payment.CashAccountId, string(payment.Kind), payment.ActualId, payment.Id)
	if err != nil {
		err := fmt.Errorf("could not update payment: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeletePayment(ctx context.Context, actualId int, paymentId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM payment WHERE actual_id = $1 AND id = $2`, actualId, paymentId)
	if err != nil {
		err := fmt.Errorf("could not delete payment: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) ListPaymentLines(ctx context.Context, projectId int, from, to *time.Time) ([]PaymentLine, error) {
	query := `SELECT p.id, p.actual_id, p.date, p.amount, p.cash_account_id, p.kind, a.entry_id, e.type
			  FROM payment p
			  JOIN actual a ON a.id = p.actual_id
			  JOIN budget_entry e ON e.id = a.entry_id
			  WHERE a.project_id = $1
				AND ($2::date IS NULL OR p.date >= $2)
				AND ($3::date IS NULL OR p.date <= $3)
			  ORDER BY p.date, p.id`
	rows, err := r.db.Query(ctx, query, projectId, from, to)
	if err != nil {
		err := fmt.Errorf("could not query payment lines: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	lines := make([]PaymentLine, 0)
	for rows.Next() {
		var l PaymentLine
		var kind, entryType string
		if err := rows.Scan(&l.Id, &l.ActualId, &l.Date, &l.Amount, &l.CashAccountId, &kind, &l.EntryId, &entryType); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		l.Kind = Kind(kind)
		l.EntryType = category.Type(entryType)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return lines, nil
}
