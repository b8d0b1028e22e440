package state

import (
	"fmt"
	"slices"

	"github.com/palemoky/property-tycoon/internal/game/event"
)

// InvariantError is the panic value raised when an event cannot be folded.
// A log holding such an event was produced by a bug upstream.
type InvariantError struct {
	Version int
	Event   event.Type
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("state: cannot fold %s at version %d: %s", e.Event, e.Version, e.Reason)
}

// Project folds events in order from the empty state.
func Project(events []event.Event) *Game {
	g := New()
	for _, e := range events {
		g.Apply(e)
	}
	return g
}

// Apply folds one event into g and bumps its version. It must see each event
// exactly once and in log order.
func (g *Game) Apply(e event.Event) {
	if _, ok := e.(event.GameCreated); !ok && !g.Created() {
		g.fail(e, "game not created")
	}

	switch ev := e.(type) {
	case event.GameCreated:
		if g.Created() {
			g.fail(e, "game already created")
		}
		if ev.Board == nil {
			g.fail(e, "missing board")
		}
		g.Board = ev.Board
		g.Economy = ev.Economy
		g.Bank = ev.Economy.InitialEconomy
		g.GameMaster = ev.GameMaster
		g.Phase = WaitingForStart{}

	case event.PlayerAdded:
		if g.HasPlayer(ev.Player) {
			g.fail(e, "duplicate player "+ev.Player)
		}
		g.index[ev.Player] = len(g.Players)
		g.Players = append(g.Players, Player{
			ID:     ev.Player,
			Name:   ev.Name,
			Color:  ev.Color,
			Money:  g.Economy.InitialMoney,
			Trades: make(map[string]*TradeParty),
		})
		g.Bank -= g.Economy.InitialMoney

	case event.PromotedToGameMaster:
		g.mustPlayer(e, ev.Player)
		g.GameMaster = ev.Player

	case event.GameStarted:
		for _, id := range ev.Players {
			g.mustPlayer(e, id)
		}
		g.Started = true
		g.Order = slices.Clone(ev.Players)
		g.Phase = WaitingForTurn{}

	case event.NewTurnStarted:
		g.mustPlayer(e, ev.Player)
		g.Phase = WaitingForDiceRoll{Player: ev.Player}

	case event.DiceRolled:
		p := g.mustPlayer(e, ev.Player)
		g.LastDice = [2]int{ev.Die1, ev.Die2}
		p.Position = (p.Position + ev.Total()) % g.Board.Len()

	case event.StartMoneyReceived:
		p := g.mustPlayer(e, ev.Player)
		p.Money += ev.Amount
		g.Bank -= ev.Amount

	case event.LandedOnSafeSpace:
		g.mustStandOn(e, ev.Player, ev.Ground)
		g.Phase = WaitingForEndTurn{Player: ev.Player}

	case event.LandedOnBuyableSpace:
		g.mustStandOn(e, ev.Player, ev.Ground)
		g.Phase = LandedOnNewGround{Player: ev.Player, Ground: ev.Ground}

	case event.LandedOnHostileSpace:
		g.mustStandOn(e, ev.Player, ev.Ground)
		g.mustPlayer(e, ev.Owner)
		if _, dup := g.Demands[ev.DemandID]; dup {
			g.fail(e, fmt.Sprintf("duplicate demand %d", ev.DemandID))
		}
		g.Demands[ev.DemandID] = Demand{
			ID:        ev.DemandID,
			Payer:     ev.Player,
			Owner:     ev.Owner,
			Ground:    ev.Ground,
			DiceTotal: ev.DiceTotal,
			Status:    DemandLanded,
		}
		g.NextDemandID = max(g.NextDemandID, ev.DemandID+1)
		g.Phase = WaitingForEndTurn{Player: ev.Player}

	case event.SpaceBought:
		p := g.mustPlayer(e, ev.Player)
		if _, ok := g.Board.Ownable(ev.Ground); !ok {
			g.fail(e, "not ownable "+ev.Ground)
		}
		if owner := g.Owner(ev.Ground); owner != "" {
			g.fail(e, ev.Ground+" already owned by "+owner)
		}
		value := ev.Cash + ev.Borrowed
		p.Money -= ev.Cash
		p.Debt += ev.Borrowed
		p.Assets += value
		g.Bank += value
		g.Deeds[ev.Ground] = Deed{Owner: ev.Player, AssetValue: value}
		switch ph := g.Phase.(type) {
		case LandedOnNewGround:
			g.Phase = WaitingForEndTurn{Player: ph.Player}
		case BuyingWonBid:
			g.Phase = ph.Resume
		default:
			g.fail(e, "no purchase pending in "+ph.Name())
		}

	case event.TurnEnded:
		g.mustPlayer(e, ev.Player)
		g.Phase = WaitingForTurn{}

	case event.BidStarted:
		ph, ok := g.Phase.(LandedOnNewGround)
		if !ok || ph.Ground != ev.Ground {
			g.fail(e, "no declined ground "+ev.Ground)
		}
		g.mustPlayer(e, ev.DefaultWinner)
		g.Phase = Bidding{
			Ground:        ev.Ground,
			DefaultWinner: ev.DefaultWinner,
			Leader:        ev.DefaultWinner,
			Participants:  []string{ev.DefaultWinner},
			Resume:        WaitingForEndTurn{Player: ph.Player},
		}

	case event.BidPlaced:
		ph := g.mustBidding(e)
		g.mustPlayer(e, ev.Player)
		ph.Leader = ev.Player
		ph.Bid = ev.Bid
		if !slices.Contains(ph.Participants, ev.Player) {
			ph.Participants = append(ph.Participants, ev.Player)
		}
		g.Phase = ph

	case event.BidPassed:
		ph := g.mustBidding(e)
		g.mustPlayer(e, ev.Player)
		ph.Passed = append(ph.Passed, ev.Player)
		ph.Participants = slices.DeleteFunc(ph.Participants, func(id string) bool { return id == ev.Player })
		g.Phase = ph

	case event.BidWon:
		ph := g.mustBidding(e)
		g.mustPlayer(e, ev.Player)
		g.Phase = BuyingWonBid{Player: ev.Player, Ground: ph.Ground, Bid: ev.Bid, Resume: ph.Resume}

	case event.RentDemanded:
		d := g.mustDemand(e, ev.DemandID)
		d.Rent = ev.Rent
		d.Status = DemandDemanded
		g.Demands[d.ID] = d

	case event.RentPaid:
		d := g.mustDemand(e, ev.DemandID)
		g.mustPlayer(e, ev.Payer).Money -= ev.Rent
		g.mustPlayer(e, ev.Owner).Money += ev.Rent
		d.Status = DemandPaid
		g.Demands[d.ID] = d

	case event.OfferAdded:
		tp := g.party(e, ev.From, ev.To)
		if tp.OfferIndex(ev.Ownable) >= 0 {
			g.fail(e, "duplicate offer "+ev.Ownable)
		}
		tp.Offers = append(tp.Offers, Offer{Ownable: ev.Ownable, Value: ev.Value})

	case event.OfferValueUpdated:
		tp := g.party(e, ev.From, ev.To)
		i := tp.OfferIndex(ev.Ownable)
		if i < 0 {
			g.fail(e, "no offer "+ev.Ownable)
		}
		tp.Offers[i].Value = ev.Value

	case event.OfferRemoved:
		tp := g.party(e, ev.From, ev.To)
		i := tp.OfferIndex(ev.Ownable)
		if i < 0 {
			g.fail(e, "no offer "+ev.Ownable)
		}
		tp.Offers = slices.Delete(tp.Offers, i, i+1)
		if len(tp.Offers) == 0 {
			tp.Offers = nil
		}

	case event.TradeAccepted:
		tp := g.party(e, ev.From, ev.To)
		tp.Accepted = true
		tp.Cash = ev.CashDelta
		tp.Debt = ev.DebtDelta

	case event.TradeAcceptanceRevoked:
		tp := g.party(e, ev.From, ev.To)
		tp.Accepted = false
		tp.Cash = 0
		tp.Debt = 0

	case event.TradeCompleted:
		a, b := ev.Players[0], ev.Players[1]
		for _, d := range ev.Deltas {
			p := g.mustPlayer(e, d.Player)
			p.Money += d.Cash
			p.Debt += d.Debt
		}
		for _, t := range ev.Transfers {
			deed, ok := g.Deeds[t.Ownable]
			if !ok || deed.Owner != t.From {
				g.fail(e, t.Ownable+" not owned by "+t.From)
			}
			g.mustPlayer(e, t.From).Assets -= deed.AssetValue
			g.mustPlayer(e, t.To).Assets += t.Value
			g.Deeds[t.Ownable] = Deed{Owner: t.To, AssetValue: t.Value}
		}
		*g.party(e, a, b) = TradeParty{}
		*g.party(e, b, a) = TradeParty{}

	default:
		panic(fmt.Sprintf("state: unknown event %T", e))
	}

	g.Version++
}

func (g *Game) fail(e event.Event, reason string) {
	panic(&InvariantError{Version: g.Version, Event: e.Type(), Reason: reason})
}

func (g *Game) mustPlayer(e event.Event, id string) *Player {
	p, ok := g.Player(id)
	if !ok {
		g.fail(e, "unknown player "+id)
	}
	return p
}

func (g *Game) mustStandOn(e event.Event, player, ground string) {
	p := g.mustPlayer(e, player)
	if g.Board.At(p.Position).SpaceID() != ground {
		g.fail(e, fmt.Sprintf("%s stands on %d, not %s", player, p.Position, ground))
	}
}

func (g *Game) mustBidding(e event.Event) Bidding {
	ph, ok := g.Phase.(Bidding)
	if !ok {
		g.fail(e, "no auction in "+g.Phase.Name())
	}
	return ph
}

func (g *Game) mustDemand(e event.Event, id int) Demand {
	d, ok := g.Demands[id]
	if !ok {
		g.fail(e, fmt.Sprintf("unknown demand %d", id))
	}
	return d
}

// party returns from's side toward to, creating it on first use.
func (g *Game) party(e event.Event, from, to string) *TradeParty {
	p := g.mustPlayer(e, from)
	g.mustPlayer(e, to)
	tp := p.Trades[to]
	if tp == nil {
		tp = &TradeParty{}
		p.Trades[to] = tp
	}
	return tp
}

func unknownPhase(p Phase) string {
	return fmt.Sprintf("state: unknown phase %T", p)
}
