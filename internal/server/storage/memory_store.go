package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/event"
)

// MemoryStore 进程内存储，重启后丢失
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][][]byte)}
}

func (s *MemoryStore) Append(ctx context.Context, gameID string, expectedVersion int, events []event.Event) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rows, err := encodeAll(events)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := len(s.logs[gameID])
	if current != expectedVersion {
		return current, apperrors.Conflict(expectedVersion, current)
	}
	s.logs[gameID] = append(s.logs[gameID], rows...)
	return len(s.logs[gameID]), nil
}

func (s *MemoryStore) Load(ctx context.Context, gameID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rows := slices.Clone(s.logs[gameID])
	s.mu.RUnlock()
	return decodeAll(rows)
}

func (s *MemoryStore) Version(ctx context.Context, gameID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[gameID]), ctx.Err()
}

func (s *MemoryStore) ListGames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.logs))
	for id, rows := range s.logs {
		if len(rows) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, ctx.Err()
}

func (s *MemoryStore) Close() error { return nil }
