package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cashplan/cashplan/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindInvitation Kind = "invitation"
	KindComment    Kind = "comment"
)

// Notification is the message handed to the mailer worker.
type Notification struct {
	Kind      Kind              `json:"kind"`
	ProjectId int               `json:"projectId"`
	Recipient string            `json:"recipient,omitempty"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (n Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
	Close() error
}

// LogPublisher is used when notifications are disabled.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, n Notification) error {
	log.Infof("notification (%s) for project %d: %s", n.Kind, n.ProjectId, n.Subject)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Subscribe forwards invitation and comment events to publisher.
func Subscribe(bus *event_bus.EventBus, publisher Publisher) {
	event_bus.SubscribeTyped(bus, event_bus.CollaboratorInvited, func(e event_bus.Typed[event_bus.CollaboratorInvitedPayload]) error {
		return publisher.Publish(e.Context(), invitationNotification(e.Payload, e.Timestamp))
	})
	event_bus.SubscribeTyped(bus, event_bus.CommentAdded, func(e event_bus.Typed[event_bus.CommentAddedPayload]) error {
		return publisher.Publish(e.Context(), commentNotification(e.Payload, e.Timestamp))
	})
}

func invitationNotification(p event_bus.CollaboratorInvitedPayload, at time.Time) Notification {
	return Notification{
		Kind:      KindInvitation,
		ProjectId: p.ProjectId,
		Recipient: p.Email,
		Subject:   fmt.Sprintf("%s invited you to %s", p.InvitedBy, p.ProjectName),
		Body:      fmt.Sprintf("You have been invited to the project %q as %s.", p.ProjectName, p.Role),
		Data: map[string]string{
			"token": p.Token,
			"role":  p.Role,
		},
		Timestamp: at,
	}
}

func commentNotification(p event_bus.CommentAddedPayload, at time.Time) Notification {
	return Notification{
		Kind:      KindComment,
		ProjectId: p.ProjectId,
		Subject:   fmt.Sprintf("New comment from %s", p.AuthorName),
		Body:      p.Body,
		Data: map[string]string{
			"targetType": p.TargetType,
			"targetId":   fmt.Sprint(p.TargetId),
			"commentId":  fmt.Sprint(p.CommentId),
		},
		Timestamp: at,
	}
}
