package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// ListCategories returns the flat list of a project's categories of one
	// type, ordered by position.
	ListCategories(ctx context.Context, projectId int, categoryType Type) ([]Category, error)
	GetCategory(ctx context.Context, projectId int, categoryId int) (Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
	RenameCategory(ctx context.Context, projectId int, categoryId int, name string) (bool, error)
	UpdatePosition(ctx context.Context, projectId int, categoryId int, position int) (bool, error)
	DeleteCategory(ctx context.Context, projectId int, categoryId int) (bool, error)
	// CountEntryReferences counts entries using any of the categories as
	// category or sub-category.
	CountEntryReferences(ctx context.Context, projectId int, categoryIds []int) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectCategory = `SELECT id, project_id, type, parent_id, name, position FROM category`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	var categoryType string
	err := row.Scan(&c.Id, &c.ProjectId, &categoryType, &c.ParentId, &c.Name, &c.Position)
	c.Type = Type(categoryType)
	return c, err
}

func (r *RepositoryImpl) ListCategories(ctx context.Context, projectId int, categoryType Type) ([]Category, error) {
	query := selectCategory + ` WHERE project_id = $1 AND type = $2 ORDER BY position, id`
	rows, err := r.db.Query(ctx, query, projectId, string(categoryType))
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return categories, nil
}

func (r *RepositoryImpl) GetCategory(ctx context.Context, projectId int, categoryId int) (Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, selectCategory+` WHERE project_id = $1 AND id = $2`, projectId, categoryId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	return c, nil
}

func (r *RepositoryImpl) CreateCategory(ctx context.Context, category Category) (Category, error) {
	query := `INSERT INTO category (project_id, type, parent_id, name, position)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		category.ProjectId,
		string(category.Type),
		category.ParentId,
		category.Name,
		category.Position,
	).Scan(&category.Id)
	if err != nil {
		err := fmt.Errorf("could not create category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	return category, nil
}

func (r *RepositoryImpl) RenameCategory(ctx context.Context, projectId int, categoryId int, name string) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE category SET name = $1 WHERE project_id = $2 AND id = $3`, name, projectId, categoryId)
	if err != nil {
		err := fmt.Errorf("could not rename category: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdatePosition(ctx context.Context, projectId int, categoryId int, position int) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE category SET position = $1 WHERE project_id = $2 AND id = $3`, position, projectId, categoryId)
	if err != nil {
		err := fmt.Errorf("could not update category position: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteCategory(ctx context.Context, projectId int, categoryId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM category WHERE project_id = $1 AND id = $2`, projectId, categoryId)
	if err != nil {
		err := fmt.Errorf("could not delete category: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) CountEntryReferences(ctx context.Context, projectId int, categoryIds []int) (int, error) {
	query := `SELECT count(*) FROM budget_entry
			  WHERE project_id = $1 AND (category_id = ANY($2) OR sub_category_id = ANY($2))`
	var count int
	if err := r.db.QueryRow(ctx, query, projectId, categoryIds).Scan(&count); err != nil {
		err := fmt.Errorf("could not count category references: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}
