package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListComments(ctx context.Context, projectId int, targetType TargetType, targetId int) ([]Comment, error)
	GetComment(ctx context.Context, projectId int, commentId int) (Comment, error)
	CreateComment(ctx context.Context, comment Comment) (Comment, error)
	UpdateBody(ctx context.Context, projectId int, commentId int, body string) (bool, error)
	DeleteComment(ctx context.Context, projectId int, commentId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectComment = `SELECT c.id, c.project_id, c.target_type, c.target_id, c.author_id, u.display_name, c.body, c.created, c.updated
					   FROM comment c JOIN users u ON u.id = c.author_id`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	var targetType string
	err := row.Scan(&c.Id, &c.ProjectId, &targetType, &c.TargetId, &c.AuthorId, &c.AuthorName, &c.Body, &c.Created, &c.Updated)
	c.TargetType = TargetType(targetType)
	return c, err
}

func (r *RepositoryImpl) ListComments(ctx context.Context, projectId int, targetType TargetType, targetId int) ([]Comment, error) {
	query := selectComment + ` WHERE c.project_id = $1 AND c.target_type = $2 AND c.target_id = $3 ORDER BY c.created, c.id`
	rows, err := r.db.Query(ctx, query, projectId, string(targetType), targetId)
	if err != nil {
		err := fmt.Errorf("could not query comments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return comments, nil
}

func (r *RepositoryImpl) GetComment(ctx context.Context, projectId int, commentId int) (Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, selectComment+` WHERE c.project_id = $1 AND c.id = $2`, projectId, commentId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get comment: %w", err)
		log.Error(err)
		return Comment{}, err
	}
	return c, nil
}

func (r *RepositoryImpl) CreateComment(ctx context.Context, comment Comment) (Comment, error) {
	query := `INSERT INTO comment (project_id, target_type, target_id, author_id, body)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, comment.ProjectId, string(comment.TargetType), comment.TargetId, comment.AuthorId, comment.Body).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not create comment: %w", err)
		log.Error(err)
		return Comment{}, err
	}
	return r.GetComment(ctx, comment.ProjectId, id)
}

func (r *RepositoryImpl) UpdateBody(ctx context.Context, projectId int, commentId int, body string) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE comment SET body = $1, updated = now() WHERE project_id = $2 AND id = $3`, body, projectId, commentId)
	if err != nil {
		err := fmt.Errorf("could not update comment: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteComment(ctx context.Context, projectId int, commentId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM comment WHERE project_id = $1 AND id = $2`, projectId, commentId)
	if err != nil {
		err := fmt.Errorf("could not delete comment: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
