// Package lobby hosts the running games of a server. Each command is
// decided against the in-memory aggregate, appended to the event store at
// the decided version and only then folded, so memory never runs ahead of
// storage.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/economy"
	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/logger"
	"github.com/palemoky/property-tycoon/internal/server/storage"
)

// Options 管理器参数
type Options struct {
	Store     storage.EventStore
	Standings storage.Standings
	Setup     engine.Setup
	// NewDice 为每局游戏创建骰子，nil 时使用随机骰子
	NewDice func() engine.Dice
	// IdleTimeout 超过该时长无提交的游戏从内存移出，0 表示不清理
	IdleTimeout time.Duration
	// MaxWait 长轮询等待上限
	MaxWait time.Duration
	// LogEvents 把每个提交的事件写入日志
	LogEvents bool
}

// Manager 游戏管理器
type Manager struct {
	opts  Options
	games map[string]*Game
	mu    sync.RWMutex
}

// Result 一次提交的结果
type Result struct {
	Version int
	Events  []event.Event
}

// NewManager 创建游戏管理器
func NewManager(opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Standings == nil {
		opts.Standings = storage.NewMemoryStandings()
	}
	if opts.Setup.Board == nil {
		opts.Setup = engine.DefaultSetup()
	}
	if opts.NewDice == nil {
		opts.NewDice = func() engine.Dice { return engine.RandomDice{} }
	}
	return &Manager{opts: opts, games: make(map[string]*Game)}
}

func (m *Manager) newAggregate(id string) *engine.Aggregate {
	agg := engine.NewAggregate(m.opts.Setup, m.opts.NewDice())
	m.observe(id, agg)
	return agg
}

func (m *Manager) restoreAggregate(id string, events []event.Event) (*engine.Aggregate, error) {
	agg, err := engine.Restore(m.opts.Setup, m.opts.NewDice(), events)
	if err != nil {
		return nil, err
	}
	m.observe(id, agg)
	return agg, nil
}

func (m *Manager) observe(id string, agg *engine.Aggregate) {
	if !m.opts.LogEvents {
		return
	}
	agg.Subscribe(func(events []event.Event) {
		for _, e := range events {
			logger.LogInfo("game %s: %s", id, e.Type())
		}
	})
}

// CreateGame 创建空游戏，第一个 AddPlayer 之后才会写入存储
func (m *Manager) CreateGame() *Game {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	g := newGame(id, m.newAggregate(id))
	m.games[id] = g

	log.Printf("🎲 游戏 %s 已创建", id)
	return g
}

// GetGame returns the game, loading it from the store when it has been
// evicted from memory.
func (m *Manager) GetGame(ctx context.Context, id string) (*Game, error) {
	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()
	if ok {
		return g, nil
	}

	events, err := m.opts.Store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	if len(events) == 0 {
		return nil, apperrors.ErrGameNotFound
	}
	agg, err := m.restoreAggregate(id, events)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// 并发加载时保留先到的
	if existing, ok := m.games[id]; ok {
		return existing, nil
	}
	g = newGame(id, agg)
	m.games[id] = g
	return g, nil
}

// ListGames 内存中的游戏，按最近活动排序
func (m *Manager) ListGames() []Summary {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(games))
	for _, g := range games {
		out = append(out, g.Summary())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return b.LastActive.Compare(a.LastActive)
	})
	return out
}

// Restore 启动时重放存储中的所有游戏，无法折叠的日志记录后跳过
func (m *Manager) Restore(ctx context.Context) (int, error) {
	ids, err := m.opts.Store.ListGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	restored := 0
	for _, id := range ids {
		if _, err := m.GetGame(ctx, id); err != nil {
			logger.LogError("恢复游戏 %s 失败: %v", id, err)
			continue
		}
		if err := m.recordStandings(ctx, id); err != nil {
			logger.LogError("恢复排名 %s 失败: %v", id, err)
		}
		restored++
	}
	log.Printf("♻️ 已恢复 %d/%d 局游戏", restored, len(ids))
	return restored, nil
}

// Submit decides cmd at expectedVersion, persists the events and folds them.
func (m *Manager) Submit(ctx context.Context, gameID string, cmd command.Command, expectedVersion int) (Result, error) {
	g, err := m.GetGame(ctx, gameID)
	if err != nil {
		return Result{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	events, err := g.agg.Decide(cmd, expectedVersion)
	if err != nil {
		return Result{Version: g.agg.Version()}, err
	}

	if _, err := m.opts.Store.Append(ctx, gameID, expectedVersion, events); err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			// 存储被其他实例写入，重新加载后让调用方重试
			m.resync(ctx, g)
		}
		return Result{Version: g.agg.Version()}, err
	}
	g.commit(events)

	if err := m.record(ctx, gameID, g.agg.State()); err != nil {
		logger.LogError("更新排名 %s 失败: %v", gameID, err)
	}
	return Result{Version: g.agg.Version(), Events: events}, nil
}

// resync reloads g from the store. Callers hold g.mu.
func (m *Manager) resync(ctx context.Context, g *Game) {
	events, err := m.opts.Store.Load(ctx, g.ID)
	if err != nil {
		logger.LogError("重新加载游戏 %s 失败: %v", g.ID, err)
		return
	}
	agg, err := m.restoreAggregate(g.ID, events)
	if err != nil {
		logger.LogError("重新加载游戏 %s 失败: %v", g.ID, err)
		return
	}
	g.replace(agg)
}

// Events returns events after skip. When there are none it waits up to
// timeout (capped by MaxWait) for the next commit and returns an empty
// slice if nothing arrives.
func (m *Manager) Events(ctx context.Context, gameID string, skip, limit int, timeout time.Duration) (int, []event.Event, error) {
	g, err := m.GetGame(ctx, gameID)
	if err != nil {
		return 0, nil, err
	}
	if m.opts.MaxWait > 0 && timeout > m.opts.MaxWait {
		timeout = m.opts.MaxWait
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		version, events, changed := g.since(skip, limit)
		if len(events) > 0 || timeout <= 0 {
			return version, events, nil
		}
		select {
		case <-changed:
		case <-timer.C:
			return version, nil, nil
		case <-ctx.Done():
			return version, nil, ctx.Err()
		}
	}
}

// View 按观察者渲染当前状态
func (m *Manager) View(ctx context.Context, gameID, viewer string) (state.View, error) {
	g, err := m.GetGame(ctx, gameID)
	if err != nil {
		return state.View{}, err
	}
	return state.Render(g.State(), viewer), nil
}

// Standings 身价排名
func (m *Manager) Standings(ctx context.Context, gameID string, limit int) ([]storage.Standing, error) {
	if _, err := m.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return m.opts.Standings.Top(ctx, gameID, limit)
}

func (m *Manager) recordStandings(ctx context.Context, gameID string) error {
	g, err := m.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return m.record(ctx, gameID, g.State())
}

func (m *Manager) record(ctx context.Context, gameID string, s *state.Game) error {
	if len(s.Players) == 0 {
		return nil
	}
	worth := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		worth[p.ID] = economy.NetWorth(p.Money, p.Assets, p.Debt)
	}
	return m.opts.Standings.Record(ctx, gameID, worth)
}

// Run 定期清理空闲游戏，直到 ctx 结束
func (m *Manager) Run(ctx context.Context) error {
	if m.opts.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

// cleanup evicts games idle for longer than IdleTimeout. Persisted games
// are loaded again on next access.
func (m *Manager) cleanup(now time.Time) int {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	// 逐个检查空闲时间时不持有 m.mu，慢提交只阻塞自己的游戏
	idle := make([]*Game, 0, len(games))
	for _, g := range games {
		if now.Sub(g.idleSince()) > m.opts.IdleTimeout {
			idle = append(idle, g)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for _, g := range idle {
		if m.games[g.ID] != g {
			continue
		}
		delete(m.games, g.ID)
		evicted++
		log.Printf("🧹 游戏 %s 空闲已移出内存", g.ID)
	}
	return evicted
}
