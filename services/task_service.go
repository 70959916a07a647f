package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sakudo-app/sakudo/broker"
	"sakudo-app/sakudo/database"
	"sakudo-app/sakudo/models"

	"gorm.io/gorm"
)

type TaskServiceInterface interface {
	CreateTask(ctx context.Context, userID uint, text string, dueDate *time.Time) (uint, error)
	ListTasks(ctx context.Context, userID uint) ([]models.Task, error)
	GetTaskById(ctx context.Context, taskID uint) (models.Task, error)
	LatestTaskID(ctx context.Context, userID uint) (uint, error)
	UpdateTask(ctx context.Context, taskID uint, text string, dueDate *time.Time, isCompleted bool) error
	DeleteTask(ctx context.Context, taskID uint) error
	UpdateOwnedTask(ctx context.Context, userID, taskID uint, text string, dueDate *time.Time, isCompleted bool) error
	DeleteOwnedTask(ctx context.Context, userID, taskID uint) error
}

// TaskService is the task store. Every operation is a single statement, so
// no explicit transactions are used.
type TaskService struct {
	db        *database.Database
	publisher broker.Publisher
}

func NewTaskService(db *database.Database, publisher broker.Publisher) *TaskService {
	return &TaskService{db: db, publisher: publisher}
}

// CreateTask inserts an open task for userID and returns its id. A userID
// with no matching account yields ErrUserNotFound.
func (s *TaskService) CreateTask(ctx context.Context, userID uint, text string, dueDate *time.Time) (uint, error) {
	task := models.Task{
		UserID:      userID,
		Text:        text,
		DueDate:     models.NormalizeDueDate(dueDate),
		IsCompleted: false,
	}
	if err := task.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.db.DB.WithContext(ctx).Create(&task).Error; err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrUserNotFound, err)
		}
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	publishEvent(s.publisher, broker.TaskCreated, "task", "create", task.UserID, taskEventData(task))
	return task.ID, nil
}

// ListTasks returns the tasks owned by userID in creation order. A user
// without tasks gets an empty slice.
func (s *TaskService) ListTasks(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := s.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("task_id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskById(ctx context.Context, taskID uint) (models.Task, error) {
	var task models.Task
	if err := s.db.DB.WithContext(ctx).First(&task, "task_id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// LatestTaskID returns the most recently created task id of userID.
func (s *TaskService) LatestTaskID(ctx context.Context, userID uint) (uint, error) {
	var task models.Task
	err := s.db.DB.WithContext(ctx).
		Select("task_id").
		Where("user_id = ?", userID).
		Order("task_id DESC").
		Take(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTaskNotFound
		}
		return 0, err
	}
	return task.ID, nil
}

// UpdateTask overwrites text, due date and completion of taskID in one
// statement. It does not check who owns the task.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, text string, dueDate *time.Time, isCompleted bool) error {
	return s.update(ctx, s.db.DB.Where("task_id = ?", taskID), taskID, text, dueDate, isCompleted)
}

// UpdateOwnedTask is UpdateTask restricted to tasks owned by userID. A task
// owned by someone else is reported as ErrTaskNotFound.
func (s *TaskService) UpdateOwnedTask(ctx context.Context, userID, taskID uint, text string, dueDate *time.Time, isCompleted bool) error {
	return s.update(ctx, s.db.DB.Where("task_id = ? AND user_id = ?", taskID, userID), taskID, text, dueDate, isCompleted)
}

func (s *TaskService) update(ctx context.Context, scope *gorm.DB, taskID uint, text string, dueDate *time.Time, isCompleted bool) error {
	if err := ValidateTaskText(text); err != nil {
		return err
	}

	dueDate = models.NormalizeDueDate(dueDate)
	result := scope.WithContext(ctx).
		Model(&models.Task{}).
		Updates(map[string]interface{}{
			"task_text":    text,
			"due_date":     dueDate,
			"is_completed": isCompleted,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	if s.publisher != nil {
		task, err := s.GetTaskById(ctx, taskID)
		if err != nil {
			task = models.Task{ID: taskID, Text: text, DueDate: dueDate, IsCompleted: isCompleted}
		}
		publishEvent(s.publisher, broker.TaskUpdated, "task", "update", task.UserID, taskEventData(task))
	}
	return nil
}

// DeleteTask permanently removes taskID. It does not check who owns the task.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	return s.delete(ctx, s.db.DB.Where("task_id = ?", taskID), taskID)
}

// DeleteOwnedTask is DeleteTask restricted to tasks owned by userID.
func (s *TaskService) DeleteOwnedTask(ctx context.Context, userID, taskID uint) error {
	return s.delete(ctx, s.db.DB.Where("task_id = ? AND user_id = ?", taskID, userID), taskID)
}

func (s *TaskService) delete(ctx context.Context, scope *gorm.DB, taskID uint) error {
	// Looked up before the delete so the event can be routed to the owner.
	var ownerID uint
	if s.publisher != nil {
		var existing models.Task
		if err := s.db.DB.WithContext(ctx).Select("task_id", "user_id").Take(&existing, "task_id = ?", taskID).Error; err == nil {
			ownerID = existing.UserID
		}
	}

	result := scope.WithContext(ctx).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	publishEvent(s.publisher, broker.TaskDeleted, "task", "delete", ownerID, map[string]interface{}{
		"task_id": taskID,
		"user_id": ownerID,
	})
	return nil
}

// Progress is the share of completed tasks as a whole percentage, rounded
// down. It is 0 when there are no tasks.
func Progress(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, task := range tasks {
		if task.IsCompleted {
			completed++
		}
	}
	return completed * 100 / len(tasks)
}
