package comment

import (
	"context"
	"fmt"

	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

// TargetCheck reports an error when targetId is not part of the project.
type TargetCheck func(ctx context.Context, projectId int, targetId int) error

// Targets holds the existence check per target type. Project targets are
// checked against the project id itself.
type Targets map[TargetType]TargetCheck

type Service interface {
	ListComments(ctx context.Context, projectId int, targetType TargetType, targetId int) ([]Comment, error)
	// AddComment is open to viewers.
	AddComment(ctx context.Context, comment Comment) (Comment, error)
	EditComment(ctx context.Context, projectId int, commentId int, body string) (Comment, error)
	// DeleteComment is allowed to the author and to the project owner.
	DeleteComment(ctx context.Context, projectId int, commentId int) error
}

type ServiceImpl struct {
	repo     Repository
	guard    collaborator.Guard
	targets  Targets
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, guard collaborator.Guard, targets Targets, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, guard: guard, targets: targets, eventBus: eventBus}
}

func (s *ServiceImpl) ListComments(ctx context.Context, projectId int, targetType TargetType, targetId int) ([]Comment, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, projectId, targetType, targetId); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, projectId, targetType, targetId)
}

func (s *ServiceImpl) AddComment(ctx context.Context, comment Comment) (Comment, error) {
	if _, err := s.guard.RequireRole(ctx, comment.ProjectId, collaborator.RoleViewer); err != nil {
		return Comment{}, err
	}
	author, err := user.CurrentUser(ctx)
	if err != nil {
		return Comment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	body, err := normalizeBody(comment.Body)
	if err != nil {
		return Comment{}, err
	}
	if err := s.checkTarget(ctx, comment.ProjectId, comment.TargetType, comment.TargetId); err != nil {
		return Comment{}, err
	}
	comment.Body = body
	comment.AuthorId = author.Id

	created, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		return Comment{}, err
	}
	err = s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.CommentAdded, event_bus.CommentAddedPayload{
		ProjectId:  created.ProjectId,
		CommentId:  created.Id,
		TargetType: string(created.TargetType),
		TargetId:   created.TargetId,
		AuthorName: author.DisplayName,
		Body:       created.Body,
	}))
	if err != nil {
		log.Errorf("failed to publish comment %d: %v", created.Id, err)
	}
	return created, nil
}

func (s *ServiceImpl) EditComment(ctx context.Context, projectId int, commentId int, body string) (Comment, error) {
	if _, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer); err != nil {
		return Comment{}, err
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Comment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetComment(ctx, projectId, commentId)
	if err != nil {
		return Comment{}, err
	}
	if existing.AuthorId != userId {
		return Comment{}, ErrNotAuthor
	}
	body, err = normalizeBody(body)
	if err != nil {
		return Comment{}, err
	}
	updated, err := s.repo.UpdateBody(ctx, projectId, commentId, body)
	if err != nil {
		return Comment{}, err
	}
	if !updated {
		return Comment{}, ErrCommentNotFound
	}
	return s.repo.GetComment(ctx, projectId, commentId)
}

func (s *ServiceImpl) DeleteComment(ctx context.Context, projectId int, commentId int) error {
	role, err := s.guard.RequireRole(ctx, projectId, collaborator.RoleViewer)
	if err != nil {
		return err
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetComment(ctx, projectId, commentId)
	if err != nil {
		return err
	}
	if existing.AuthorId != userId && role != collaborator.RoleOwner {
		return ErrNotAuthor
	}
	deleted, err := s.repo.DeleteComment(ctx, projectId, commentId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCommentNotFound
	}
	return nil
}

func (s *ServiceImpl) checkTarget(ctx context.Context, projectId int, targetType TargetType, targetId int) error {
	switch targetType {
	case TargetProject:
		if targetId != projectId {
			return rest.Invalid("targetId", "Project comments must target the project itself")
		}
		return nil
	case TargetEntry, TargetActual:
		if check, ok := s.targets[targetType]; ok {
			if err := check(ctx, projectId, targetId); err != nil {
				return rest.Invalid("targetId", fmt.Sprintf("No %s with id %d in this project", targetType, targetId))
			}
		}
		return nil
	}
	return rest.Invalid("targetType", "Target type must be one of project, entry, actual")
}
