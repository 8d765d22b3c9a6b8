// Package backendtest provides a testify mock of the backend API.
package backendtest

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
)

// MockAPI simulates the backend REST API using `testify/mock`.
type MockAPI struct {
	mock.Mock
}

var _ backend.API = (*MockAPI)(nil)

func (m *MockAPI) ListFriends(ctx context.Context) ([]backend.Friend, error) {
	args := m.Called(ctx)
	friends, _ := args.Get(0).([]backend.Friend)
	return friends, args.Error(1)
}

func (m *MockAPI) CreateFriend(ctx context.Context, in backend.FriendInput) (backend.Result, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *MockAPI) UpdateFriend(ctx context.Context, id int64, in backend.FriendInput) (backend.Result, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *MockAPI) DeleteFriend(ctx context.Context, id int64) (backend.Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *MockAPI) ListAlerts(ctx context.Context) ([]backend.Alert, error) {
	args := m.Called(ctx)
	alerts, _ := args.Get(0).([]backend.Alert)
	return alerts, args.Error(1)
}

func (m *MockAPI) MarkAlertRead(ctx context.Context, id int64) (backend.Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(backend.Result), args.Error(1)
}

func (m *MockAPI) UpcomingBirthdays(ctx context.Context) ([]backend.UpcomingEntry, error) {
	args := m.Called(ctx)
	upcoming, _ := args.Get(0).([]backend.UpcomingEntry)
	return upcoming, args.Error(1)
}

func (m *MockAPI) FriendMessages(ctx context.Context, friendID int64) ([]backend.Message, error) {
	args := m.Called(ctx, friendID)
	messages, _ := args.Get(0).([]backend.Message)
	return messages, args.Error(1)
}
