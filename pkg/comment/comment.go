package comment

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cashplan/cashplan/internal/rest"
)

const MaxBodyLength = 2000

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("only the author can change this comment")
)

type TargetType string

const (
	TargetProject TargetType = "project"
	TargetEntry   TargetType = "entry"
	TargetActual  TargetType = "actual"
)

type Comment struct {
	Id         int
	ProjectId  int
	TargetType TargetType
	TargetId   int
	AuthorId   int
	AuthorName string
	Body       string
	Created    time.Time
	Updated    time.Time
}

func normalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", rest.Invalid("body", "Comment cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return "", rest.Invalid("body", "Comment cannot be longer than 2000 characters")
	}
	return body, nil
}
