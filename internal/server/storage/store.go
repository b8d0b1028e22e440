// Package storage persists game event logs and standings. Stores keep each
// event as its wire JSON and never look past the type tag.
package storage

import (
	"context"
	"fmt"

	"github.com/palemoky/property-tycoon/internal/game/event"
)

// EventStore 事件日志存储
type EventStore interface {
	// Append adds events to the end of gameID's log when the log currently
	// holds exactly expectedVersion events, and returns the new version.
	// A mismatch returns an error matching apperrors.ErrVersionConflict.
	Append(ctx context.Context, gameID string, expectedVersion int, events []event.Event) (int, error)
	// Load 返回完整日志，未知游戏返回空
	Load(ctx context.Context, gameID string) ([]event.Event, error)
	Version(ctx context.Context, gameID string) (int, error)
	// ListGames 返回所有有日志的游戏 ID
	ListGames(ctx context.Context) ([]string, error)
	Close() error
}

func encodeAll(events []event.Event) ([][]byte, error) {
	out := make([][]byte, len(events))
	for i, e := range events {
		data, err := event.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode event %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

func decodeAll[T string | []byte](rows []T) ([]event.Event, error) {
	events := make([]event.Event, 0, len(rows))
	for i, row := range rows {
		e, err := event.Unmarshal([]byte(row))
		if err != nil {
			return nil, fmt.Errorf("decode event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

var (
	_ EventStore = (*MemoryStore)(nil)
	_ EventStore = (*RedisStore)(nil)
	_ EventStore = (*SQLiteStore)(nil)
	_ Standings  = (*RedisStandings)(nil)
	_ Standings  = (*MemoryStandings)(nil)
)
