package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/network/client"
	"github.com/palemoky/property-tycoon/internal/protocol"
)

func newTestModel() *Model {
	return NewModel(client.New("http://127.0.0.1:0"), "json")
}

// playedGame runs a short game in memory and returns the aggregate.
func playedGame(t *testing.T, cmds ...command.Command) *engine.Aggregate {
	t.Helper()
	agg := engine.NewAggregate(engine.DefaultSetup(), engine.NewFixedDice([2]int{1, 2}))
	for _, c := range cmds {
		_, err := agg.Execute(c, agg.Version())
		require.NoError(t, err, "%T", c)
	}
	return agg
}

func TestModel_LoginRequiresName(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NotNil(t, m.notification)
	assert.Equal(t, NotifyError, m.notification.Type)
	assert.False(t, m.busy)
	assert.Equal(t, ScreenLogin, m.screen)
}

func TestModel_LoginFlow(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	m.Update(loggedInMsg{Session: protocol.SessionResponse{PlayerID: "p1", Name: "Ann"}})
	assert.Equal(t, ScreenLobby, m.screen)

	m.Update(gamesMsg{Games: []protocol.GameSummary{{ID: "g1"}, {ID: "g2", Started: true}}})
	assert.Len(t, m.games, 2)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)

	// A shorter list clamps the selection.
	m.Update(gamesMsg{Games: []protocol.GameSummary{{ID: "g1"}}})
	assert.Equal(t, 0, m.selected)
	assert.Contains(t, m.View(), "g1")
}

func TestModel_ApplyUpdate(t *testing.T) {
	t.Parallel()
	m := newTestModel()
	m.screen = ScreenGame

	agg := playedGame(t,
		command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"},
		command.AddPlayer{Player: "p2", Name: "Bob", Color: "blue"},
		command.StartGame{Player: "p1"},
	)
	m.Update(updateMsg{Game: agg.State(), Events: agg.Events(0, 0)})

	assert.Equal(t, agg.Version(), m.view.Version)
	assert.Len(t, m.view.Players, 2)
	require.Len(t, m.log, agg.Version())
	assert.Contains(t, m.log[1], "Ann")

	out := m.View()
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "等待掷骰")
}

func TestModel_LogIsBounded(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	g := state.New()
	events := make([]event.Event, maxLogLines+5)
	for i := range events {
		events[i] = event.TurnEnded{Player: "p1"}
	}
	m.applyUpdate(updateMsg{Game: g, Events: events})
	assert.Len(t, m.log, maxLogLines)
}

func TestModel_NotificationClears(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	m.Update(errMsg{Err: errors.New("boom")})
	require.NotNil(t, m.notification)
	first := m.noticeSeq

	m.Update(resultMsg{Err: apperrors.Illegal("不是你的回合")})
	assert.Equal(t, "不是你的回合", m.notification.Message)

	// A stale clear leaves the newer notification in place.
	m.Update(clearNotificationMsg{Seq: first})
	assert.NotNil(t, m.notification)
	m.Update(clearNotificationMsg{Seq: m.noticeSeq})
	assert.Nil(t, m.notification)
}

func TestModel_StreamMsgUnwraps(t *testing.T) {
	t.Parallel()
	m := newTestModel()

	m.Update(streamMsg{Msg: reconnectingMsg{Attempt: 2, MaxTries: 5}})
	require.NotNil(t, m.notification)
	assert.Equal(t, NotifyReconnecting, m.notification.Type)
	assert.True(t, strings.Contains(m.notification.Message, "2/5"))

	// Folding new events clears the reconnect notice.
	m.Update(streamMsg{Msg: updateMsg{Game: state.New()}})
	assert.Nil(t, m.notification)
}

func TestErrorText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "状态已变化，请稍后重试", errorText(apperrors.Conflict(1, 2)))
	assert.Equal(t, "x", errorText(apperrors.Illegal("x")))
	assert.Equal(t, "plain", errorText(errors.New("plain")))
}

func TestAction(t *testing.T) {
	t.Parallel()

	lobby := playedGame(t, command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"})
	rolling := playedGame(t,
		command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"},
		command.AddPlayer{Player: "p2", Name: "Bob", Color: "blue"},
		command.StartGame{Player: "p1"},
	)
	// Ann rolls 1+2 and lands on an unowned space.
	landed := playedGame(t,
		command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"},
		command.AddPlayer{Player: "p2", Name: "Bob", Color: "blue"},
		command.StartGame{Player: "p1"},
		command.RollDice{Player: "p1"},
	)
	pending := state.Render(landed.State(), "p1")
	require.NotNil(t, pending.Pending)

	tests := []struct {
		name string
		view state.View
		me   string
		key  string
		want command.Command
	}{
		{"join picks a free color", state.Render(lobby.State(), "p2"), "p2", "a", command.AddPlayer{Player: "p2", Name: "Bob", Color: "blue"}},
		{"joined player cannot join again", state.Render(lobby.State(), "p1"), "p1", "a", nil},
		{"game master starts", state.Render(lobby.State(), "p1"), "p1", "s", command.StartGame{Player: "p1"}},
		{"others cannot start", state.Render(lobby.State(), "p2"), "p2", "s", nil},
		{"active player rolls", state.Render(rolling.State(), "p1"), "p1", "r", command.RollDice{Player: "p1"}},
		{"waiting player cannot roll", state.Render(rolling.State(), "p2"), "p2", "r", nil},
		{"buy pays cash first", pending, "p1", "b", command.BuyThisSpace{Player: "p1", Cash: pending.Pending.Price}},
		{"decline", pending, "p1", "d", command.DeclineThisSpace{Player: "p1"}},
		{"no auction to bid on", pending, "p1", "+", nil},
		{"no rent owed", pending, "p1", "p", nil},
		{"unknown key", pending, "p1", "z", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name := "Ann"
			if tt.me == "p2" {
				name = "Bob"
			}
			got, ok := action(tt.view, tt.me, name, tt.key)
			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_Auction(t *testing.T) {
	t.Parallel()

	v := state.View{
		Players: []state.PlayerView{{ID: "p1", Money: 5}, {ID: "p2"}},
		Auction: &state.AuctionView{Ground: "x", Leader: "p1", Bid: 20},
		Phase:   "Bidding",
	}
	got, ok := action(v, "p2", "Bob", "+")
	require.True(t, ok)
	assert.Equal(t, command.PlaceBid{Player: "p2", Amount: 20 + bidStep}, got)

	got, ok = action(v, "p2", "Bob", "x")
	require.True(t, ok)
	assert.Equal(t, command.PassBid{Player: "p2"}, got)

	// Won bid beyond cash borrows the rest.
	v.Auction = nil
	v.Phase = "BuyingWonBid"
	v.Pending = &state.PendingView{Player: "p1", Ground: "x", Price: 20}
	got, ok = action(v, "p1", "Ann", "b")
	require.True(t, ok)
	assert.Equal(t, command.BuyWonBid{Player: "p1", Cash: 5, Borrowed: 15}, got)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	agg := playedGame(t, command.AddPlayer{Player: "p1", Name: "Ann", Color: "red"})
	g := agg.State()
	assert.Contains(t, describe(g, event.PlayerAdded{Player: "p1", Name: "Ann"}), "Ann")
	assert.Contains(t, describe(g, event.BidWon{Player: "p1", Bid: 40}), "$40")
	assert.Contains(t, describe(g, event.DiceRolled{Player: "ghost", Die1: 3, Die2: 4}), "ghost")
}
