package event_bus

const (
	ProjectDeleted      EventType = "project.deleted"
	EntryChanged        EventType = "entry.changed"
	PaymentRecorded     EventType = "payment.recorded"
	CollaboratorInvited EventType = "collaborator.invited"
	CommentAdded        EventType = "comment.added"
	ScenarioDeleted     EventType = "scenario.deleted"
	AccountChanged      EventType = "account.changed"
)

type ProjectDeletedPayload struct {
	ProjectId int
}

// EntryChangedPayload is published for creates, updates and deletes of
// budget entries, including scenario entries.
type EntryChangedPayload struct {
	ProjectId int
	EntryId   int
	Deleted   bool
}

// PaymentRecordedPayload covers actuals and their payments.
type PaymentRecordedPayload struct {
	ProjectId int
	ActualId  int
	EntryId   int
}

type CollaboratorInvitedPayload struct {
	ProjectId   int
	ProjectName string
	Email       string
	Role        string
	Token       string
	InvitedBy   string
}

type CommentAddedPayload struct {
	ProjectId  int
	CommentId  int
	TargetType string
	TargetId   int
	AuthorName string
	Body       string
}

type ScenarioDeletedPayload struct {
	ProjectId  int
	ScenarioId int
}

// AccountChangedPayload is published when a cash account is created,
// updated or deleted; opening balances depend on it.
type AccountChangedPayload struct {
	ProjectId int
	AccountId int
}
