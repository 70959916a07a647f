package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"sakudo-app/sakudo/models"
	"sakudo-app/sakudo/services"

	"github.com/gin-gonic/gin"
)

type taskRequest struct {
	TaskText    string `json:"task_text"`
	DueDate     string `json:"due_date"`
	IsCompleted bool   `json:"is_completed"`
}

type taskResponse struct {
	TaskID      uint           `json:"task_id"`
	UserID      uint           `json:"user_id"`
	TaskText    string         `json:"task_text"`
	DueDate     string         `json:"due_date,omitempty"`
	IsCompleted bool           `json:"is_completed"`
	Urgency     models.Urgency `json:"urgency"`
}

type taskListResponse struct {
	Tasks    []taskResponse `json:"tasks"`
	Progress int            `json:"progress"`
}

func newTaskResponse(task models.Task, today time.Time) taskResponse {
	return taskResponse{
		TaskID:      task.ID,
		UserID:      task.UserID,
		TaskText:    task.Text,
		DueDate:     models.FormatDueDate(task.DueDate),
		IsCompleted: task.IsCompleted,
		Urgency:     task.Urgency(today),
	}
}

func RegisterTaskRoutes(group *gin.RouterGroup, taskService services.TaskServiceInterface) {
	group.GET("/tasks", func(c *gin.Context) { GetTasks(c, taskService) })
	group.POST("/tasks", func(c *gin.Context) { CreateTask(c, taskService) })
	group.GET("/tasks/latest", func(c *gin.Context) { GetLatestTask(c, taskService) })
	group.GET("/tasks/:id", func(c *gin.Context) { GetTaskById(c, taskService) })
	group.PUT("/tasks/:id", func(c *gin.Context) { UpdateTask(c, taskService) })
	group.DELETE("/tasks/:id", func(c *gin.Context) { DeleteTask(c, taskService) })
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("userID")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID, true
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return 0, false
	}
	return uint(id), true
}

// bindTask parses and validates a task body. It writes the 400 itself.
func bindTask(c *gin.Context) (taskRequest, *time.Time, bool) {
	var request taskRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return request, nil, false
	}
	if err := services.ValidateTaskText(request.TaskText); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return request, nil, false
	}
	dueDate, err := models.ParseDueDate(request.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return request, nil, false
	}
	return request, dueDate, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Task operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func GetTasks(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	today := time.Now()
	response := taskListResponse{
		Tasks:    make([]taskResponse, 0, len(tasks)),
		Progress: services.Progress(tasks),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, newTaskResponse(task, today))
	}
	c.JSON(http.StatusOK, response)
}

func CreateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	request, dueDate, ok := bindTask(c)
	if !ok {
		return
	}

	taskID, err := taskService.CreateTask(c.Request.Context(), userID, request.TaskText, dueDate)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	task := models.Task{ID: taskID, UserID: userID, Text: request.TaskText, DueDate: models.NormalizeDueDate(dueDate)}
	c.JSON(http.StatusCreated, newTaskResponse(task, time.Now()))
}

// GetLatestTask returns the most recently created task of the caller.
func GetLatestTask(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := taskService.LatestTaskID(c.Request.Context(), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	task, err := taskService.GetTaskById(c.Request.Context(), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task, time.Now()))
}

func GetTaskById(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := taskService.GetTaskById(c.Request.Context(), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	// Someone else's task looks the same as a missing one.
	if task.UserID != userID {
		respondTaskError(c, services.ErrTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task, time.Now()))
}

func UpdateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	request, dueDate, ok := bindTask(c)
	if !ok {
		return
	}

	err := taskService.UpdateOwnedTask(c.Request.Context(), userID, taskID, request.TaskText, dueDate, request.IsCompleted)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	task := models.Task{
		ID:          taskID,
		UserID:      userID,
		Text:        request.TaskText,
		DueDate:     models.NormalizeDueDate(dueDate),
		IsCompleted: request.IsCompleted,
	}
	c.JSON(http.StatusOK, newTaskResponse(task, time.Now()))
}

func DeleteTask(c *gin.Context, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := taskService.DeleteOwnedTask(c.Request.Context(), userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
