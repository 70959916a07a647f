package broker

const (
	UserEventsSubject = "sakudo.user_events"
	TaskEventsSubject = "sakudo.task_events"
)

// Subjects lists every subject the application publishes on.
var Subjects = []string{
	UserEventsSubject,
	TaskEventsSubject,
}
