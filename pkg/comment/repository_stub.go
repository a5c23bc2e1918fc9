package comment

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	comments map[int]Comment
	nextId   int
	// Authors resolves author names like the users join does.
	Authors map[int]string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{comments: map[int]Comment{}, Authors: map[int]string{}}
}

func (s *RepositoryStub) ListComments(ctx context.Context, projectId int, targetType TargetType, targetId int) ([]Comment, error) {
	comments := make([]Comment, 0)
	for _, c := range s.comments {
		if c.ProjectId == projectId && c.TargetType == targetType && c.TargetId == targetId {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].Id < comments[j].Id })
	return comments, nil
}

func (s *RepositoryStub) GetComment(ctx context.Context, projectId int, commentId int) (Comment, error) {
	c, ok := s.comments[commentId]
	if !ok || c.ProjectId != projectId {
		return Comment{}, ErrCommentNotFound
	}
	return c, nil
}

func (s *RepositoryStub) CreateComment(ctx context.Context, comment Comment) (Comment, error) {
	s.nextId++
	comment.Id = s.nextId
	comment.AuthorName = s.Authors[comment.AuthorId]
	comment.Created = time.Now()
	comment.Updated = comment.Created
	s.comments[comment.Id] = comment
	return comment, nil
}

func (s *RepositoryStub) UpdateBody(ctx context.Context, projectId int, commentId int, body string) (bool, error) {
	c, ok := s.comments[commentId]
	if !ok || c.ProjectId != projectId {
		return false, nil
	}
	c.Body = body
	c.Updated = time.Now()
	s.comments[commentId] = c
	return true, nil
}

func (s *RepositoryStub) DeleteComment(ctx context.Context, projectId int, commentId int) (bool, error) {
	c, ok := s.comments[commentId]
	if !ok || c.ProjectId != projectId {
		return false, nil
	}
	delete(s.comments, commentId)
	return true, nil
}
