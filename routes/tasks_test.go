package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sakudo-app/sakudo/models"
	"sakudo-app/sakudo/services"
	"sakudo-app/sakudo/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUserID uint = 1

// setupTaskRouter mounts the task routes behind a stub that authenticates
// every request as testUserID.
func setupTaskRouter(taskService services.TaskServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	RegisterTaskRoutes(apiGroup, taskService)
	return router
}

func dueDate(t *testing.T, value string) *time.Time {
	t.Helper()
	d, err := models.ParseDueDate(value)
	require.NoError(t, err)
	return d
}

func TestGetTasks(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("ListTasks", mock.Anything, testUserID).Return([]models.Task{
		{ID: 1, UserID: testUserID, Text: "Test Task", DueDate: dueDate(t, "2000-01-01")},
		{ID: 2, UserID: testUserID, Text: "Test Task 2", IsCompleted: true},
		{ID: 3, UserID: testUserID, Text: "Test Task 3"},
	}, nil)
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response taskListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 33, response.Progress)
	require.Len(t, response.Tasks, 3)
	assert.Equal(t, "Test Task", response.Tasks[0].TaskText)
	assert.Equal(t, "2000-01-01", response.Tasks[0].DueDate)
	assert.Equal(t, models.UrgencyOverdue, response.Tasks[0].Urgency)
	assert.Equal(t, models.UrgencyCompleted, response.Tasks[1].Urgency)
	assert.Equal(t, models.UrgencyNormal, response.Tasks[2].Urgency)
	mockService.AssertExpectations(t)
}

func TestGetTasks_Empty(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("ListTasks", mock.Anything, testUserID).Return([]models.Task{}, nil)
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"progress":0}`, w.Body.String())
}

func TestGetTasks_StorageFailure(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("ListTasks", mock.Anything, testUserID).Return(nil, errors.New("database is locked"))
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestCreateTask(t *testing.T) {
	t.Run("Valid JSON", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		mockService.On("CreateTask", mock.Anything, testUserID, "buy milk", dueDate(t, "2024-01-01")).Return(uint(42), nil)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/tasks", bytes.NewBufferString(`{"task_text":"buy milk","due_date":"2024-01-01"}`))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var response taskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, uint(42), response.TaskID)
		assert.Equal(t, testUserID, response.UserID)
		assert.Equal(t, "2024-01-01", response.DueDate)
		assert.False(t, response.IsCompleted)
		mockService.AssertExpectations(t)
	})

	t.Run("No due date", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		mockService.On("CreateTask", mock.Anything, testUserID, "someday", (*time.Time)(nil)).Return(uint(43), nil)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/tasks", bytes.NewBufferString(`{"task_text":"someday"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "due_date")
	})

	invalid := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"task_text":`},
		{"Empty text", `{"task_text":"   "}`},
		{"Bad date", `{"task_text":"x","due_date":"01/02/2024"}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(testutils.MockTaskService)
			router := setupTaskRouter(mockService)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/v1/tasks", bytes.NewBufferString(tt.body))
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockService.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Unknown user", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		mockService.On("CreateTask", mock.Anything, testUserID, "orphan", (*time.Time)(nil)).Return(uint(0), services.ErrUserNotFound)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/tasks", bytes.NewBufferString(`{"task_text":"orphan"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetTaskById(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("GetTaskById", mock.Anything, uint(1)).Return(models.Task{ID: 1, UserID: testUserID, Text: "Test Task"}, nil)
	mockService.On("GetTaskById", mock.Anything, uint(2)).Return(models.Task{ID: 2, UserID: 99, Text: "Not mine"}, nil)
	mockService.On("GetTaskById", mock.Anything, uint(3)).Return(models.Task{}, services.ErrTaskNotFound)
	router := setupTaskRouter(mockService)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"Task Found", "/api/v1/tasks/1", http.StatusOK},
		{"Other user's task", "/api/v1/tasks/2", http.StatusNotFound},
		{"Task Not Found", "/api/v1/tasks/3", http.StatusNotFound},
		{"Invalid id", "/api/v1/tasks/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetLatestTask(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("LatestTaskID", mock.Anything, testUserID).Return(uint(7), nil)
	mockService.On("GetTaskById", mock.Anything, uint(7)).Return(models.Task{ID: 7, UserID: testUserID, Text: "newest"}, nil)
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks/latest", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newest")
	mockService.AssertExpectations(t)
}

func TestGetLatestTask_NoTasks(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("LatestTaskID", mock.Anything, testUserID).Return(uint(0), services.ErrTaskNotFound)
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks/latest", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTask(t *testing.T) {
	t.Run("Valid update", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		mockService.On("UpdateOwnedTask", mock.Anything, testUserID, uint(5), "buy oat milk", dueDate(t, "2024-01-02"), true).Return(nil)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/tasks/5", bytes.NewBufferString(`{"task_text":"buy oat milk","due_date":"2024-01-02","is_completed":true}`))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var response taskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.IsCompleted)
		assert.Equal(t, models.UrgencyCompleted, response.Urgency)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing or foreign task", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		mockService.On("UpdateOwnedTask", mock.Anything, testUserID, uint(6), "x", (*time.Time)(nil), false).Return(services.ErrTaskNotFound)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/tasks/6", bytes.NewBufferString(`{"task_text":"x"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Empty text", func(t *testing.T) {
		mockService := new(testutils.MockTaskService)
		router := setupTaskRouter(mockService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/tasks/6", bytes.NewBufferString(`{"task_text":""}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	mockService := new(testutils.MockTaskService)
	mockService.On("DeleteOwnedTask", mock.Anything, testUserID, uint(5)).Return(nil)
	mockService.On("DeleteOwnedTask", mock.Anything, testUserID, uint(6)).Return(services.ErrTaskNotFound)
	router := setupTaskRouter(mockService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/v1/tasks/5", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/v1/tasks/6", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskRoutes_RequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterTaskRoutes(router.Group("/api/v1"), new(testutils.MockTaskService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
