package lobby

import (
	"sync"
	"time"

	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// Game 一局游戏：聚合根加上等待新事件的广播
type Game struct {
	ID        string
	CreatedAt time.Time

	agg        *engine.Aggregate
	lastActive time.Time
	// changed 在每次提交后关闭并替换
	changed chan struct{}

	mu sync.Mutex
}

func newGame(id string, agg *engine.Aggregate) *Game {
	now := time.Now()
	return &Game{
		ID:         id,
		CreatedAt:  now,
		agg:        agg,
		lastActive: now,
		changed:    make(chan struct{}),
	}
}

// commit folds events and wakes every waiter. Callers hold g.mu.
func (g *Game) commit(events []event.Event) {
	g.agg.Commit(events)
	g.lastActive = time.Now()
	close(g.changed)
	g.changed = make(chan struct{})
}

// replace swaps in a freshly restored aggregate. Callers hold g.mu.
func (g *Game) replace(agg *engine.Aggregate) {
	g.agg = agg
	g.lastActive = time.Now()
	close(g.changed)
	g.changed = make(chan struct{})
}

// Version 当前版本
func (g *Game) Version() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.agg.Version()
}

// State 当前投影的副本
func (g *Game) State() *state.Game {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.agg.State()
}

// since returns the events after skip and the channel to wait on when there
// are none yet.
func (g *Game) since(skip, limit int) (int, []event.Event, <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.agg.Version(), g.agg.Events(skip, limit), g.changed
}

// Summary 游戏概要
func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.agg.State()
	players := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, p.Name)
	}
	return Summary{
		ID:         g.ID,
		Players:    players,
		Started:    s.Started,
		Version:    s.Version,
		LastActive: g.lastActive,
	}
}

func (g *Game) idleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// Summary 列表中的一行
type Summary struct {
	ID         string
	Players    []string
	Started    bool
	Version    int
	LastActive time.Time
}
