package services

import (
	"log"

	"sakudo-app/sakudo/broker"
	"sakudo-app/sakudo/models"
)

// publishEvent sends a change event after a write has committed. Delivery
// is best effort: failures are logged and never reach the caller.
func publishEvent(publisher broker.Publisher, eventType broker.EventType, entity, operation string, actorID uint, data map[string]interface{}) {
	if publisher == nil {
		return
	}

	event, err := models.NewEvent(string(eventType), entity, operation, actorID, data)
	if err != nil {
		log.Printf("Failed to build %s event: %v", eventType, err)
		return
	}

	if err := publisher.Publish(broker.SubjectFor(eventType), event); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func taskEventData(task models.Task) map[string]interface{} {
	return map[string]interface{}{
		"task_id":      task.ID,
		"user_id":      task.UserID,
		"task_text":    task.Text,
		"due_date":     models.FormatDueDate(task.DueDate),
		"is_completed": task.IsCompleted,
	}
}
