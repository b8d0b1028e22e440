package lobby

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/server/storage"
)

func newTestManager(store storage.EventStore) *Manager {
	return NewManager(Options{
		Store:       store,
		NewDice:     func() engine.Dice { return engine.NewFixedDice([2]int{1, 2}) },
		IdleTimeout: time.Hour,
		MaxWait:     time.Second,
	})
}

func submit(t *testing.T, m *Manager, id string, cmd command.Command) Result {
	t.Helper()
	g, err := m.GetGame(context.Background(), id)
	require.NoError(t, err)
	res, err := m.Submit(context.Background(), id, cmd, g.Version())
	require.NoError(t, err, "%s", cmd.Type())
	return res
}

func startedGame(t *testing.T, m *Manager) string {
	t.Helper()
	id := m.CreateGame().ID
	submit(t, m, id, command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"})
	submit(t, m, id, command.AddPlayer{Player: "p2", Name: "Bob", Color: "blue"})
	submit(t, m, id, command.StartGame{Player: "p1"})
	return id
}

func TestManager_SubmitPersistsBeforeFolding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestManager(store)

	id := startedGame(t, m)
	res := submit(t, m, id, command.RollDice{Player: "p1"})
	assert.Equal(t, event.DiceRolled{Player: "p1", Die1: 1, Die2: 2}, res.Events[0])

	stored, err := store.Version(ctx, id)
	require.NoError(t, err)
	g, err := m.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, stored, g.Version())
	assert.Equal(t, res.Version, stored)
}

func TestManager_RejectedCommandsLeaveNoTrace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestManager(store)
	id := startedGame(t, m)
	before, _ := store.Version(ctx, id)

	_, err := m.Submit(ctx, id, command.RollDice{Player: "p2"}, before)
	assert.ErrorIs(t, err, apperrors.ErrIllegalCommand)

	_, err = m.Submit(ctx, id, command.RollDice{Player: "p1"}, before-1)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)

	after, _ := store.Version(ctx, id)
	assert.Equal(t, before, after)
}

func TestManager_StoreFailureDoesNotFold(t *testing.T) {
	t.Parallel()

	store := new(storage.MockEventStore)
	store.On("Append", mock.Anything, mock.Anything, 0, mock.Anything).Return(0, errors.New("disk full"))
	m := newTestManager(store)
	g := m.CreateGame()

	_, err := m.Submit(context.Background(), g.ID, command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"}, 0)
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, g.Version())
	store.AssertExpectations(t)
}

// Two servers sharing one store: the slower one is told to retry and
// catches up with the log.
func TestManager_ConflictResyncsFromStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	a := newTestManager(store)
	id := startedGame(t, a)

	b := newTestManager(store)
	gb, err := b.GetGame(ctx, id)
	require.NoError(t, err)
	v := gb.Version()

	submit(t, a, id, command.RollDice{Player: "p1"})

	_, err = b.Submit(ctx, id, command.RollDice{Player: "p1"}, v)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)

	ga, _ := a.GetGame(ctx, id)
	assert.Equal(t, ga.Version(), gb.Version())
	assert.Equal(t, ga.State().Players[0].Position, gb.State().Players[0].Position)
}

func TestManager_EventsLongPoll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestManager(nil)
	id := startedGame(t, m)
	g, _ := m.GetGame(ctx, id)
	skip := g.Version()

	type polled struct {
		version int
		events  []event.Event
	}
	done := make(chan polled, 1)
	go func() {
		v, events, err := m.Events(ctx, id, skip, 0, time.Second)
		assert.NoError(t, err)
		done <- polled{v, events}
	}()

	time.Sleep(20 * time.Millisecond)
	submit(t, m, id, command.RollDice{Player: "p1"})

	select {
	case got := <-done:
		require.NotEmpty(t, got.events)
		assert.Equal(t, event.DiceRolled{Player: "p1", Die1: 1, Die2: 2}, got.events[0])
		assert.Equal(t, g.Version(), got.version)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not wake up")
	}
}

func TestManager_EventsTimeoutAndPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestManager(nil)
	id := startedGame(t, m)

	v, events, err := m.Events(ctx, id, 100, 0, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 6, v)

	_, events, err = m.Events(ctx, id, 0, 2, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.IsType(t, event.GameCreated{}, events[0])

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = m.Events(cancelled, id, 100, 0, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_GameNotFound(t *testing.T) {
	t.Parallel()
	m := newTestManager(nil)

	_, err := m.GetGame(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)

	_, err = m.Submit(context.Background(), "nope", command.StartGame{Player: "p1"}, 0)
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestManager_RestoreSkipsBrokenLogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	first := newTestManager(store)
	id := startedGame(t, first)
	submit(t, first, id, command.RollDice{Player: "p1"})

	_, err := store.Append(ctx, "broken", 0, []event.Event{event.DiceRolled{Player: "ghost", Die1: 1, Die2: 1}})
	require.NoError(t, err)

	second := newTestManager(store)
	restored, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	g1, _ := first.GetGame(ctx, id)
	g2, err := second.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, g1.State().Players, g2.State().Players)
	assert.Equal(t, g1.State().Phase, g2.State().Phase)

	standings, err := second.Standings(ctx, id, 0)
	require.NoError(t, err)
	assert.Len(t, standings, 2)
}

func TestManager_CleanupEvictsIdleGames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestManager(nil)
	id := startedGame(t, m)
	empty := m.CreateGame().ID

	assert.Zero(t, m.cleanup(time.Now()))
	assert.Equal(t, 2, m.cleanup(time.Now().Add(2*time.Hour)))
	assert.Empty(t, m.ListGames())

	// Persisted games come back on demand.
	g, err := m.GetGame(ctx, id)
	require.NoError(t, err)
	assert.True(t, g.State().Started)

	_, err = m.GetGame(ctx, empty)
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestManager_CleanupDoesNotBlockOtherGames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestManager(nil)
	busy, err := m.GetGame(ctx, startedGame(t, m))
	require.NoError(t, err)
	other := m.CreateGame().ID

	// Hold one game's lock as a slow submit would.
	busy.mu.Lock()
	done := make(chan int, 1)
	go func() { done <- m.cleanup(time.Now().Add(2 * time.Hour)) }()
	time.Sleep(20 * time.Millisecond)

	lookup := make(chan error, 1)
	go func() {
		_, err := m.GetGame(ctx, other)
		lookup <- err
	}()
	select {
	case err := <-lookup:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lookup blocked behind a busy game during cleanup")
	}

	busy.mu.Unlock()
	select {
	case n := <-done:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("cleanup did not finish")
	}
	assert.Empty(t, m.ListGames())
}

func TestManager_ListAndView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestManager(nil)
	id := startedGame(t, m)

	games := m.ListGames()
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].ID)
	assert.Equal(t, []string{"Ann", "Bob"}, games[0].Players)
	assert.True(t, games[0].Started)

	view, err := m.View(ctx, id, "p2")
	require.NoError(t, err)
	assert.True(t, view.NotMyTurn)
	assert.Equal(t, "p1", view.ActivePlayer)
}
