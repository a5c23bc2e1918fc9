package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListScenarios(ctx context.Context, projectId int) ([]Scenario, error)
	GetScenario(ctx context.Context, projectId int, scenarioId int) (Scenario, error)
	CreateScenario(ctx context.Context, scenario Scenario) (Scenario, error)
	UpdateScenario(ctx context.Context, scenario Scenario) (bool, error)
	DeleteScenario(ctx context.Context, projectId int, scenarioId int) (bool, error)
	// DuplicateScenario stores target and copies the entries of sourceId into it.
	DuplicateScenario(ctx context.Context, sourceId int, target Scenario) (Scenario, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectScenario = `SELECT id, project_id, name, description, created FROM scenario`

func scanScenario(row pgx.Row) (Scenario, error) {
	var s Scenario
	err := row.Scan(&s.Id, &s.ProjectId, &s.Name, &s.Description, &s.Created)
	return s, err
}

func (r *RepositoryImpl) ListScenarios(ctx context.Context, projectId int) ([]Scenario, error) {
	rows, err := r.db.Query(ctx, selectScenario+` WHERE project_id = $1 ORDER BY created, id`, projectId)
	if err != nil {
		err := fmt.Errorf("could not query scenarios: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	scenarios := make([]Scenario, 0)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return scenarios, nil
}

func (r *RepositoryImpl) GetScenario(ctx context.Context, projectId int, scenarioId int) (Scenario, error) {
	s, err := scanScenario(r.db.QueryRow(ctx, selectScenario+` WHERE project_id = $1 AND id = $2`, projectId, scenarioId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Scenario{}, ErrScenarioNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get scenario: %w", err)
		log.Error(err)
		return Scenario{}, err
	}
	return s, nil
}

const insertScenario = `INSERT INTO scenario (project_id, name, description) VALUES ($1, $2, $3) RETURNING id, created`

func (r *RepositoryImpl) CreateScenario(ctx context.Context, scenario Scenario) (Scenario, error) {
	err := r.db.QueryRow(ctx, insertScenario, scenario.ProjectId, scenario.Name, scenario.Description).
		Scan(&scenario.Id, &scenario.Created)
	if err != nil {
		err := fmt.Errorf("could not create scenario: %w", err)
		log.Error(err)
		return Scenario{}, err
	}
	return scenario, nil
}

func (r *RepositoryImpl) UpdateScenario(ctx context.Context, scenario Scenario) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE scenario SET name = $1, description = $2 WHERE project_id = $3 AND id = $4`,
		scenario.Name, scenario.Description, scenario.ProjectId, scenario.Id)
	if err != nil {
		err := fmt.Errorf("could not update scenario: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteScenario(ctx context.Context, projectId int, scenarioId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM scenario WHERE project_id = $1 AND id = $2`, projectId, scenarioId)
	if err != nil {
		err := fmt.Errorf("could not delete scenario: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DuplicateScenario(ctx context.Context, sourceId int, target Scenario) (Scenario, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Scenario{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, insertScenario, target.ProjectId, target.Name, target.Description).
		Scan(&target.Id, &target.Created)
	if err != nil {
		err := fmt.Errorf("could not create scenario: %w", err)
		log.Error(err)
		return Scenario{}, err
	}

	copyEntries := `INSERT INTO budget_entry (project_id, scenario_id, type, name, category_id, sub_category_id, supplier,
								  amount, frequency, start_date, end_date, cash_account_id, is_provision, loan_id, notes)
					SELECT project_id, $1, type, name, category_id, sub_category_id, supplier,
						   amount, frequency, start_date, end_date, cash_account_id, is_provision, NULL, notes
					FROM budget_entry WHERE project_id = $2 AND scenario_id = $3 ORDER BY id`
	if _, err := tx.Exec(ctx, copyEntries, target.Id, target.ProjectId, sourceId); err != nil {
		err := fmt.Errorf("could not copy scenario entries: %w", err)
		log.Error(err)
		return Scenario{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Scenario{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return target, nil
}
