package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListProjects(ctx context.Context, userId int, includeArchived bool) ([]Project, error)
	GetProject(ctx context.Context, userId int, projectId int) (Project, error)
	GetName(ctx context.Context, projectId int) (string, error)
	// CreateProject stores the project and its owner collaborator in one transaction.
	CreateProject(ctx context.Context, project Project) (Project, error)
	UpdateProject(ctx context.Context, project Project) (bool, error)
	SetArchived(ctx context.Context, projectId int, archived bool) (bool, error)
	DeleteProject(ctx context.Context, projectId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectProject = `SELECT p.id, p.name, p.description, p.currency, p.start_date, p.owner_id, p.archived, c.role
					   FROM project p
					   JOIN project_collaborator c ON c.project_id = p.id AND c.user_id = $1`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var role string
	err := row.Scan(&p.Id, &p.Name, &p.Description, &p.Currency, &p.StartDate, &p.OwnerId, &p.Archived, &role)
	p.Role = collaborator.Role(role)
	return p, err
}

func (r *RepositoryImpl) ListProjects(ctx context.Context, userId int, includeArchived bool) ([]Project, error) {
	query := selectProject + ` WHERE ($2 OR NOT p.archived) ORDER BY p.archived, lower(p.name), p.id`
	rows, err := r.db.Query(ctx, query, userId, includeArchived)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return projects, nil
}

func (r *RepositoryImpl) GetProject(ctx context.Context, userId int, projectId int) (Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, selectProject+` WHERE p.id = $2`, userId, projectId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) GetName(ctx context.Context, projectId int) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM project WHERE id = $1`, projectId).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProjectNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not get project name: %w", err)
	}
	return name, nil
}

func (r *RepositoryImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Project{}, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO project (name, description, currency, start_date, owner_id)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = tx.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.Currency,
		project.StartDate,
		project.OwnerId,
	).Scan(&project.Id)
	if err != nil {
		err := fmt.Errorf("could not create project: %w", err)
		log.Error(err)
		return Project{}, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO project_collaborator (project_id, user_id, role) VALUES ($1, $2, $3)`,
		project.Id, project.OwnerId, string(collaborator.RoleOwner))
	if err != nil {
		err := fmt.Errorf("could not add project owner: %w", err)
		log.Error(err)
		return Project{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Project{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	project.Role = collaborator.RoleOwner
	return project, nil
}

func (r *RepositoryImpl) UpdateProject(ctx context.Context, project Project) (bool, error) {
	query := `UPDATE project SET name = $1, description = $2, currency = $3, start_date = $4 WHERE id = $5`
	result, err := r.db.Exec(ctx, query, project.Name, project.Description, project.Currency, project.StartDate, project.Id)
	if err != nil {
		err := fmt.Errorf("could not update project: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) SetArchived(ctx context.Context, projectId int, archived bool) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE project SET archived = $1 WHERE id = $2`, archived, projectId)
	if err != nil {
		err := fmt.Errorf("could not archive project: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteProject(ctx context.Context, projectId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM project WHERE id = $1`, projectId)
	if err != nil {
		err := fmt.Errorf("could not delete project: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
