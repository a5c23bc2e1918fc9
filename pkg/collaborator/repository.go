package collaborator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	GetRole(ctx context.Context, projectId int, userId int) (Role, error)
	ListCollaborators(ctx context.Context, projectId int) ([]Collaborator, error)
	AddCollaborator(ctx context.Context, projectId int, userId int, role Role) error
	UpdateRole(ctx context.Context, projectId int, userId int, role Role) (bool, error)
	RemoveCollaborator(ctx context.Context, projectId int, userId int) (bool, error)
	CreateInvitation(ctx context.Context, invitation Invitation) (Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	ListPendingInvitations(ctx context.Context, projectId int) ([]Invitation, error)
	DeleteInvitation(ctx context.Context, projectId int, invitationId int) (bool, error)
	// AcceptInvitation adds the collaborator and marks the invitation accepted atomically.
	AcceptInvitation(ctx context.Context, invitation Invitation, userId int, at time.Time) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetRole(ctx context.Context, projectId int, userId int) (Role, error) {
	query := `SELECT role FROM project_collaborator WHERE project_id = $1 AND user_id = $2`
	var role string
	err := r.db.QueryRow(ctx, query, projectId, userId).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCollaboratorNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get collaborator role: %w", err)
		log.Error(err)
		return "", err
	}
	return Role(role), nil
}

func (r *RepositoryImpl) ListCollaborators(ctx context.Context, projectId int) ([]Collaborator, error) {
	query := `SELECT c.user_id, u.email, u.display_name, c.role
			  FROM project_collaborator c
			  JOIN users u ON u.id = c.user_id
			  WHERE c.project_id = $1
			  ORDER BY c.created, u.display_name`
	rows, err := r.db.Query(ctx, query, projectId)
	if err != nil {
		err := fmt.Errorf("could not query collaborators: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	collaborators := make([]Collaborator, 0)
	for rows.Next() {
		c := Collaborator{ProjectId: projectId}
		var role string
		if err := rows.Scan(&c.UserId, &c.Email, &c.DisplayName, &role); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		c.Role = Role(role)
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return collaborators, nil
}

func (r *RepositoryImpl) AddCollaborator(ctx context.Context, projectId int, userId int, role Role) error {
	query := `INSERT INTO project_collaborator (project_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, projectId, userId, string(role)); err != nil {
		err := fmt.Errorf("could not add collaborator: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) UpdateRole(ctx context.Context, projectId int, userId int, role Role) (bool, error) {
	query := `UPDATE project_collaborator SET role = $1 WHERE project_id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, string(role), projectId, userId)
	if err != nil {
		err := fmt.Errorf("could not update collaborator role: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) RemoveCollaborator(ctx context.Context, projectId int, userId int) (bool, error) {
	query := `DELETE FROM project_collaborator WHERE project_id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, projectId, userId)
	if err != nil {
		err := fmt.Errorf("could not remove collaborator: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) CreateInvitation(ctx context.Context, invitation Invitation) (Invitation, error) {
	query := `INSERT INTO collaborator_invitation (project_id, email, role, token, created_by)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id, created`
	err := r.db.QueryRow(ctx, query,
		invitation.ProjectId,
		invitation.Email,
		string(invitation.Role),
		invitation.Token,
		invitation.CreatedBy,
	).Scan(&invitation.Id, &invitation.Created)
	if err != nil {
		err := fmt.Errorf("could not create invitation: %w", err)
		log.Error(err)
		return Invitation{}, err
	}
	return invitation, nil
}

const selectInvitation = `SELECT id, project_id, email, role, token, created_by, created, accepted_at FROM collaborator_invitation`

func scanInvitation(row pgx.Row) (Invitation, error) {
	var inv Invitation
	var role string
	err := row.Scan(&inv.Id, &inv.ProjectId, &inv.Email, &role, &inv.Token, &inv.CreatedBy, &inv.Created, &inv.AcceptedAt)
	inv.Role = Role(role)
	return inv, err
}

func (r *RepositoryImpl) GetInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRow(ctx, selectInvitation+` WHERE token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get invitation: %w", err)
		log.Error(err)
		return Invitation{}, err
	}
	return inv, nil
}

func (r *RepositoryImpl) ListPendingInvitations(ctx context.Context, projectId int) ([]Invitation, error) {
	rows, err := r.db.Query(ctx, selectInvitation+` WHERE project_id = $1 AND accepted_at IS NULL ORDER BY created`, projectId)
	if err != nil {
		err := fmt.Errorf("could not query invitations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	invitations := make([]Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *RepositoryImpl) DeleteInvitation(ctx context.Context, projectId int, invitationId int) (bool, error) {
	query := `DELETE FROM collaborator_invitation WHERE id = $1 AND project_id = $2 AND accepted_at IS NULL`
	result, err := r.db.Exec(ctx, query, invitationId, projectId)
	if err != nil {
		err := fmt.Errorf("could not delete invitation: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) AcceptInvitation(ctx context.Context, invitation Invitation, userId int, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO project_collaborator (project_id, user_id, role) VALUES ($1, $2, $3)
						  ON CONFLICT (project_id, user_id) DO NOTHING`,
		invitation.ProjectId, userId, string(invitation.Role))
	if err != nil {
		err := fmt.Errorf("could not add collaborator: %w", err)
		log.Error(err)
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE collaborator_invitation SET accepted_at = $1 WHERE id = $2`, at, invitation.Id)
	if err != nil {
		err := fmt.Errorf("could not mark invitation accepted: %w", err)
		log.Error(err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}
