package loan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListLoans(ctx context.Context, projectId int) ([]Loan, error)
	GetLoan(ctx context.Context, projectId int, loanId int) (Loan, error)
	CreateLoan(ctx context.Context, loan Loan) (Loan, error)
	UpdateLoan(ctx context.Context, loan Loan) (bool, error)
	DeleteLoan(ctx context.Context, projectId int, loanId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectLoan = `SELECT l.id, l.project_id, l.kind, l.name, l.counterparty, l.principal, l.interest_rate,
						   l.monthly_payment, l.term_months, l.start_date,
						   (SELECT min(e.id) FROM budget_entry e WHERE e.loan_id = l.id AND e.scenario_id IS NULL)
					FROM loan l`

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	var kind string
	err := row.Scan(&l.Id, &l.ProjectId, &kind, &l.Name, &l.Counterparty, &l.Principal, &l.InterestRate,
		&l.MonthlyPayment, &l.TermMonths, &l.StartDate, &l.EntryId)
	l.Kind = Kind(kind)
	return l, err
}

func (r *RepositoryImpl) ListLoans(ctx context.Context, projectId int) ([]Loan, error) {
	rows, err := r.db.Query(ctx, selectLoan+` WHERE l.project_id = $1 ORDER BY l.start_date, l.id`, projectId)
	if err != nil {
		err := fmt.Errorf("could not query loans: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	loans := make([]Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return loans, nil
}

func (r *RepositoryImpl) GetLoan(ctx context.Context, projectId int, loanId int) (Loan, error) {
	l, err := scanLoan(r.db.QueryRow(ctx, selectLoan+` WHERE l.project_id = $1 AND l.id = $2`, projectId, loanId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrLoanNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get loan: %w", err)
		log.Error(err)
		return Loan{}, err
	}
	return l, nil
}

func (r *RepositoryImpl) CreateLoan(ctx context.Context, loan Loan) (Loan, error) {
	query := `INSERT INTO loan (project_id, kind, name, counterparty, principal, interest_rate, monthly_payment, term_months, start_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRow(ctx, query, loan.ProjectId, string(loan.Kind), loan.Name, loan.Counterparty, loan.Principal,
		loan.InterestRate, loan.MonthlyPayment, loan.TermMonths, loan.StartDate).Scan(&loan.Id)
	if err != nil {
		err := fmt.Errorf("could not create loan: %w", err)
		log.Error(err)
		return Loan{}, err
	}
	return loan, nil
}

func (r *RepositoryImpl) UpdateLoan(ctx context.Context, loan Loan) (bool, error) {
	query := `UPDATE loan SET kind = $1, name = $2, counterparty = $3, principal = $4, interest_rate = $5,
					monthly_payment = $6, term_months = $7, start_date = $8
			  WHERE project_id = $9 AND id = $10`
	result, err := r.db.Exec(ctx, query, string(loan.Kind), loan.Name, loan.Counterparty, loan.Principal, loan.InterestRate,
		loan.MonthlyPayment, loan.TermMonths, loan.StartDate, loan.ProjectId, loan.Id)
	if err != nil {
		err := fmt.Errorf("could not update loan: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteLoan(ctx context.Context, projectId int, loanId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM loan WHERE project_id = $1 AND id = $2`, projectId, loanId)
	if err != nil {
		err := fmt.Errorf("could not delete loan: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
