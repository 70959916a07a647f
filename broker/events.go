package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	UserCreated EventType = "user.created"

	TaskCreated EventType = "task.created"
	TaskUpdated EventType = "task.updated"
	TaskDeleted EventType = "task.deleted"
)

// SubjectFor maps an event type to the subject it is published on.
func SubjectFor(event EventType) string {
	switch event {
	case UserCreated:
		return UserEventsSubject
	default:
		return TaskEventsSubject
	}
}
