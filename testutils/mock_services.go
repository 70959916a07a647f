package testutils

import (
	"context"
	"sync"
	"time"

	"sakudo-app/sakudo/models"
	"sakudo-app/sakudo/utils/token"

	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks services.AuthServiceInterface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateAccount(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAuthService) VerifyLogin(ctx context.Context, username, password string) (uint, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, uint, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Get(1).(uint), args.Error(2)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*token.JWTClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*token.JWTClaims)
	return claims, args.Error(1)
}

func (m *MockAuthService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ComparePasswords(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

// MockTaskService mocks services.TaskServiceInterface
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, userID uint, text string, dueDate *time.Time) (uint, error) {
	args := m.Called(ctx, userID, text, dueDate)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, userID uint) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) GetTaskById(ctx context.Context, taskID uint) (models.Task, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) LatestTaskID(ctx context.Context, userID uint) (uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, taskID uint, text string, dueDate *time.Time, isCompleted bool) error {
	args := m.Called(ctx, taskID, text, dueDate, isCompleted)
	return args.Error(0)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID uint) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockTaskService) UpdateOwnedTask(ctx context.Context, userID, taskID uint, text string, dueDate *time.Time, isCompleted bool) error {
	args := m.Called(ctx, userID, taskID, text, dueDate, isCompleted)
	return args.Error(0)
}

func (m *MockTaskService) DeleteOwnedTask(ctx context.Context, userID, taskID uint) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

// MockUserService mocks services.UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserById(ctx context.Context, id uint) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

// RecordingPublisher keeps every event it is given.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []*models.Event
	Err    error
}

func (p *RecordingPublisher) Publish(subject string, event *models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *RecordingPublisher) Close() {}

// Names returns the event names recorded so far, in order.
func (p *RecordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		names = append(names, e.Event)
	}
	return names
}
