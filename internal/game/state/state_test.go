package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/economy"
	"github.com/palemoky/property-tycoon/internal/game/event"
)

// sampleLog covers setup, a purchase, a paid rent demand and a completed trade.
func sampleLog() []event.Event {
	return []event.Event{
		event.GameCreated{GameMaster: "p1", Board: board.Classic(), Economy: economy.Default()},
		event.PlayerAdded{Player: "p1", Name: "Ann", Color: "red"},
		event.PromotedToGameMaster{Player: "p1"},
		event.PlayerAdded{Player: "p2", Name: "Bob", Color: "blue"},
		event.GameStarted{Players: []string{"p1", "p2"}},
		event.NewTurnStarted{Player: "p1"},
		event.DiceRolled{Player: "p1", Die1: 1, Die2: 2},
		event.LandedOnBuyableSpace{Player: "p1", Ground: "baltic"},
		event.SpaceBought{Player: "p1", Ground: "baltic", Cash: 50, Borrowed: 10},
		event.TurnEnded{Player: "p1"},
		event.NewTurnStarted{Player: "p2"},
		event.DiceRolled{Player: "p2", Die1: 2, Die2: 1},
		event.LandedOnHostileSpace{Player: "p2", Owner: "p1", Ground: "baltic", DemandID: 1, DiceTotal: 3},
		event.RentDemanded{DemandID: 1, Rent: 4},
		event.RentPaid{DemandID: 1, Payer: "p2", Owner: "p1", Rent: 4},
		event.TurnEnded{Player: "p2"},
		event.NewTurnStarted{Player: "p1"},
		event.OfferAdded{From: "p1", To: "p2", Ownable: "baltic", Value: 80},
		event.OfferValueUpdated{From: "p1", To: "p2", Ownable: "baltic", Value: 100},
		event.TradeAccepted{From: "p1", To: "p2"},
		event.TradeAccepted{From: "p2", To: "p1", CashDelta: 100},
		event.TradeCompleted{
			Players:   [2]string{"p1", "p2"},
			Deltas:    []event.MoneyDelta{{Player: "p1", Cash: 100}, {Player: "p2", Cash: -100}},
			Transfers: []event.Transfer{{Ownable: "baltic", From: "p1", To: "p2", Value: 100}},
		},
	}
}

func TestProject_Deterministic(t *testing.T) {
	t.Parallel()

	log := sampleLog()
	assert.Equal(t, Project(log), Project(log))
}

func TestProject_PrefixMatchesIncremental(t *testing.T) {
	t.Parallel()

	log := sampleLog()
	g := New()
	for k := 0; k <= len(log); k++ {
		require.Equal(t, Project(log[:k]), g, "prefix %d", k)
		if k < len(log) {
			g.Apply(log[k])
		}
	}
	assert.Equal(t, len(log), g.Version)
}

func TestProject_Ledger(t *testing.T) {
	t.Parallel()

	g := Project(sampleLog())

	p1, ok := g.Player("p1")
	require.True(t, ok)
	p2, ok := g.Player("p2")
	require.True(t, ok)

	assert.Equal(t, 1500-50+4+100, p1.Money)
	assert.Equal(t, 10, p1.Debt)
	assert.Equal(t, 0, p1.Assets)
	assert.Equal(t, 1500-4-100, p2.Money)
	assert.Equal(t, 100, p2.Assets)
	assert.Equal(t, 20000-2*1500+60, g.Bank)

	assert.Equal(t, Deed{Owner: "p2", AssetValue: 100}, g.Deeds["baltic"])
	assert.Equal(t, DemandPaid, g.Demands[1].Status)
	assert.Equal(t, 2, g.NextDemandID)
	assert.Equal(t, WaitingForDiceRoll{Player: "p1"}, g.Phase)

	assert.Equal(t, TradeParty{}, g.Party("p1", "p2"))
	assert.Equal(t, TradeParty{}, g.Party("p2", "p1"))
}

func TestApply_OfferAddRemoveRoundTrip(t *testing.T) {
	t.Parallel()

	log := sampleLog()[:9]
	g := Project(log)
	before := g.Offers("p1", "p2")

	g.Apply(event.OfferAdded{From: "p1", To: "p2", Ownable: "baltic", Value: 300})
	assert.Len(t, g.Offers("p1", "p2"), 1)

	g.Apply(event.OfferRemoved{From: "p1", To: "p2", Ownable: "baltic"})
	assert.Equal(t, before, g.Offers("p1", "p2"))
}

func TestApply_AuctionDetour(t *testing.T) {
	t.Parallel()

	g := Project(sampleLog()[:8])
	g.Apply(event.BidStarted{Ground: "baltic", DefaultWinner: "p2"})

	ph, ok := g.Phase.(Bidding)
	require.True(t, ok)
	assert.Equal(t, "p2", ph.Leader)
	assert.Equal(t, []string{"p2"}, ph.Participants)
	assert.Equal(t, "p1", ActivePlayer(g.Phase))
	assert.Empty(t, Actor(g.Phase))

	g.Apply(event.BidPlaced{Player: "p1", Bid: 30})
	g.Apply(event.BidPassed{Player: "p2"})
	g.Apply(event.BidWon{Player: "p1", Bid: 30})
	assert.Equal(t, BuyingWonBid{Player: "p1", Ground: "baltic", Bid: 30, Resume: WaitingForEndTurn{Player: "p1"}}, g.Phase)

	g.Apply(event.SpaceBought{Player: "p1", Ground: "baltic", Cash: 30})
	assert.Equal(t, WaitingForEndTurn{Player: "p1"}, g.Phase)
	assert.Equal(t, Deed{Owner: "p1", AssetValue: 30}, g.Deeds["baltic"])
}

func TestApply_PanicsOnBrokenLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		log  []event.Event
	}{
		{"not created", []event.Event{event.PlayerAdded{Player: "p1"}}},
		{"unknown player", append(sampleLog()[:2], event.PromotedToGameMaster{Player: "ghost"})},
		{"duplicate player", append(sampleLog()[:2], event.PlayerAdded{Player: "p1"})},
		{"bid outside auction", append(sampleLog()[:6], event.BidPlaced{Player: "p1", Bid: 1})},
		{"wrong ground", append(sampleLog()[:7], event.LandedOnSafeSpace{Player: "p1", Ground: "start"})},
		{"unknown demand", append(sampleLog()[:7], event.RentDemanded{DemandID: 9, Rent: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Project(tt.log) })
		})
	}
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()

	g := Project(sampleLog()[:18])
	c := g.Clone()
	require.Equal(t, g, c)

	c.Apply(event.OfferRemoved{From: "p1", To: "p2", Ownable: "baltic"})
	assert.Len(t, g.Offers("p1", "p2"), 1)
	assert.Empty(t, c.Offers("p1", "p2"))
	assert.Equal(t, 18, g.Version)
}

func TestRender(t *testing.T) {
	t.Parallel()

	g := Project(sampleLog()[:14])

	owner := Render(g, "p1")
	assert.True(t, owner.NotMyTurn)
	assert.Equal(t, "p2", owner.ActivePlayer)
	assert.Empty(t, owner.RentToDemand)

	payer := Render(g, "p2")
	assert.False(t, payer.NotMyTurn)
	assert.Equal(t, "WaitingForEndTurn", payer.Phase)
	require.Len(t, payer.RentDemandedForMe, 1)
	assert.Equal(t, DemandView{ID: 1, Payer: "p2", Owner: "p1", Ground: "baltic", Rent: 4, Status: "demanded"}, payer.RentDemandedForMe[0])

	landed := Render(Project(sampleLog()[:13]), "p1")
	require.Len(t, landed.RentToDemand, 1)
	assert.Equal(t, 1, landed.RentToDemand[0].ID)

	spectator := Render(g, "")
	assert.True(t, spectator.NotMyTurn)
	assert.Len(t, spectator.Players, 2)
	assert.Equal(t, []DeedView{{Space: "baltic", Owner: "p1", AssetValue: 60}}, spectator.Deeds)
}
