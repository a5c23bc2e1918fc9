package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashplan/cashplan/pkg/category"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// ListEntries returns the base plan when scenarioId is nil, otherwise the
	// entries of that scenario only.
	ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]Entry, error)
	// ListLoanEntries returns the base plan entries repaying loanId.
	ListLoanEntries(ctx context.Context, projectId int, loanId int) ([]Entry, error)
	GetEntry(ctx context.Context, projectId int, entryId int) (Entry, error)
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (bool, error)
	DeleteEntry(ctx context.Context, projectId int, entryId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectEntry = `SELECT id, project_id, scenario_id, type, name, category_id, sub_category_id, supplier, amount,
							frequency, start_date, end_date, cash_account_id, is_provision, loan_id, notes
					 FROM budget_entry`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var entryType, frequency string
	err := row.Scan(
		&e.Id, &e.ProjectId, &e.ScenarioId, &entryType, &e.Name, &e.CategoryId, &e.SubCategoryId, &e.Supplier, &e.Amount,
		&frequency, &e.StartDate, &e.EndDate, &e.CashAccountId, &e.IsProvision, &e.LoanId, &e.Notes,
	)
	e.Type = category.Type(entryType)
	e.Frequency = Frequency(frequency)
	return e, err
}

func (r *RepositoryImpl) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return entries, nil
}

func (r *RepositoryImpl) ListEntries(ctx context.Context, projectId int, scenarioId *int) ([]Entry, error) {
	if scenarioId == nil {
		return r.queryEntries(ctx, selectEntry+` WHERE project_id = $1 AND scenario_id IS NULL ORDER BY start_date, id`, projectId)
	}
	return r.queryEntries(ctx, selectEntry+` WHERE project_id = $1 AND scenario_id = $2 ORDER BY start_date, id`, projectId, *scenarioId)
}

func (r *RepositoryImpl) ListLoanEntries(ctx context.Context, projectId int, loanId int) ([]Entry, error) {
	return r.queryEntries(ctx, selectEntry+` WHERE project_id = $1 AND loan_id = $2 AND scenario_id IS NULL ORDER BY id`, projectId, loanId)
}

func (r *RepositoryImpl) GetEntry(ctx context.Context, projectId int, entryId int) (Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, selectEntry+` WHERE project_id = $1 AND id = $2`, projectId, entryId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	query := `INSERT INTO budget_entry (project_id, scenario_id, type, name, category_id, sub_category_id, supplier, amount,
										frequency, start_date, end_date, cash_account_id, is_provision, loan_id, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		entry.ProjectId,
		entry.ScenarioId,
		string(entry.Type),
		entry.Name,
		entry.CategoryId,
		entry.SubCategoryId,
		entry.Supplier,
		entry.Amount,
		string(entry.Frequency),
		entry.StartDate,
		entry.EndDate,
		entry.CashAccountId,
		entry.IsProvision,
		entry.LoanId,
		entry.Notes,
	).Scan(&entry.Id)
	if err != nil {
		err := fmt.Errorf("could not create entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) UpdateEntry(ctx context.Context, entry Entry) (bool, error) {
	query := `UPDATE budget_entry
			  SET type = $1, name = $2, category_id = $3, sub_category_id = $4, supplier = $5, amount = $6,
				  frequency = $7, start_date = $8, end_date = $9, cash_account_id = $10, is_provision = $11,
				  loan_id = $12, notes = $13
			  WHERE project_id = $14 AND id = $15`
	result, err := r.db.Exec(ctx, query,
		string(entry.Type),
		entry.Name,
		entry.CategoryId,
		entry.SubCategoryId,
		entry.Supplier,
		entry.Amount,
		string(entry.Frequency),
		entry.StartDate,
		entry.EndDate,
		entry.CashAccountId,
		entry.IsProvision,
		entry.LoanId,
		entry.Notes,
		entry.ProjectId,
		entry.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update entry: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteEntry(ctx context.Context, projectId int, entryId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM budget_entry WHERE project_id = $1 AND id = $2`, projectId, entryId)
	if err != nil {
		err := fmt.Errorf("could not delete entry: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
