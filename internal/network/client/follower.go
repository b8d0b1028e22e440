package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/logger"
	"github.com/palemoky/property-tycoon/internal/protocol"
)

const (
	// 失败重试的初始间隔与上限
	retryInterval    = 2 * time.Second
	maxRetryInterval = 30 * time.Second
)

// ErrGap 收到的事件批次与本地版本不连续
var ErrGap = errors.New("event batch does not continue the local log")

// Follower keeps a local projection of one game by folding the events the
// server publishes. It never decides anything itself.
type Follower struct {
	GameID string

	client *Client
	game   *state.Game
	mu     sync.RWMutex

	// OnUpdate 每次折叠新事件后回调，参数为状态副本
	OnUpdate func(g *state.Game, events []event.Event)
}

// NewFollower 创建跟随者，本地状态从空开始
func NewFollower(c *Client, gameID string) *Follower {
	return &Follower{GameID: gameID, client: c, game: state.New()}
}

// Version 已折叠的事件数
func (f *Follower) Version() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.game.Version
}

// State 本地状态副本
func (f *Follower) State() *state.Game {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.game.Clone()
}

// Apply folds a batch that starts at version from. Events already folded
// are skipped; a batch beyond the local version is rejected with ErrGap.
func (f *Follower) Apply(from int, events []event.Event) error {
	f.mu.Lock()
	snapshot, applied, err := f.fold(from, events)
	f.mu.Unlock()

	if err != nil || len(applied) == 0 {
		return err
	}
	if f.OnUpdate != nil {
		f.OnUpdate(snapshot, applied)
	}
	return nil
}

// fold applies the new part of a batch to a copy and swaps it in only when
// every event folds. Callers hold f.mu.
func (f *Follower) fold(from int, events []event.Event) (snapshot *state.Game, applied []event.Event, err error) {
	local := f.game.Version
	if from > local {
		return nil, nil, fmt.Errorf("%w: have %d, got from %d", ErrGap, local, from)
	}
	skip := local - from
	if skip >= len(events) {
		return nil, nil, nil
	}
	applied = events[skip:]

	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*state.InvariantError)
			if !ok {
				panic(r)
			}
			snapshot, applied, err = nil, nil, fmt.Errorf("fold: %w", ie)
		}
	}()

	next := f.game.Clone()
	for _, e := range applied {
		next.Apply(e)
	}
	f.game = next
	return next.Clone(), applied, nil
}

// ApplyPayload 折叠服务器推送的一批事件
func (f *Follower) ApplyPayload(p protocol.EventsPayload) error {
	return f.Apply(p.From, p.Events)
}

// Sync 拉取并折叠一批事件，返回折叠数
func (f *Follower) Sync(ctx context.Context, timeout time.Duration) (int, error) {
	before := f.Version()
	page, err := f.client.Events(ctx, f.GameID, before, timeout)
	if err != nil {
		return 0, err
	}
	if err := f.ApplyPayload(page); err != nil {
		return 0, err
	}
	return f.Version() - before, nil
}

// Run long-polls until ctx ends, backing off exponentially on errors.
func (f *Follower) Run(ctx context.Context, timeout time.Duration) error {
	backoff := retryInterval
	for {
		_, err := f.Sync(ctx, timeout)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			logger.LogError("同步游戏 %s 失败: %v", f.GameID, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRetryInterval)
		default:
			if backoff != retryInterval {
				log.Printf("游戏 %s 同步已恢复", f.GameID)
			}
			backoff = retryInterval
		}
	}
}
