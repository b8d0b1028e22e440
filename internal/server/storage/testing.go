//go:build !production

package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/property-tycoon/internal/game/event"
)

// MockEventStore 事件存储 mock
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Append(ctx context.Context, gameID string, expectedVersion int, events []event.Event) (int, error) {
	args := m.Called(ctx, gameID, expectedVersion, events)
	return args.Int(0), args.Error(1)
}

func (m *MockEventStore) Load(ctx context.Context, gameID string) ([]event.Event, error) {
	args := m.Called(ctx, gameID)
	events, _ := args.Get(0).([]event.Event)
	return events, args.Error(1)
}

func (m *MockEventStore) Version(ctx context.Context, gameID string) (int, error) {
	args := m.Called(ctx, gameID)
	return args.Int(0), args.Error(1)
}

func (m *MockEventStore) ListGames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockEventStore) Close() error {
	return m.Called().Error(0)
}

var _ EventStore = (*MockEventStore)(nil)
