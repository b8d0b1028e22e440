package engine

import (
	"slices"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// placeBid 任何未放弃的玩家都可以出更高的价
func placeBid(g *state.Game, c command.PlaceBid) ([]event.Event, error) {
	ph, ok := g.Phase.(state.Bidding)
	if !ok {
		return nil, apperrors.Illegal("当前没有拍卖")
	}
	if slices.Contains(ph.Passed, c.Player) {
		return nil, apperrors.Illegal("%s 已放弃竞拍", c.Player)
	}
	if c.Amount <= ph.Bid {
		return nil, apperrors.Illegal("出价 %d 必须高于当前出价 %d", c.Amount, ph.Bid)
	}
	return accept(event.BidPlaced{Player: c.Player, Bid: c.Amount})
}

// passBid removes the player from the auction. The leader can only pass once
// nobody else is left in it. A participant's pass that leaves at most one
// participant settles the auction on the leader.
func passBid(g *state.Game, c command.PassBid) ([]event.Event, error) {
	ph, ok := g.Phase.(state.Bidding)
	if !ok {
		return nil, apperrors.Illegal("当前没有拍卖")
	}
	if slices.Contains(ph.Passed, c.Player) {
		return nil, apperrors.Illegal("%s 已放弃竞拍", c.Player)
	}
	participant := slices.Contains(ph.Participants, c.Player)
	if c.Player == ph.Leader && len(ph.Participants) > 1 {
		return nil, apperrors.Illegal("领先者不能放弃")
	}

	events := []event.Event{event.BidPassed{Player: c.Player}}
	if participant && len(ph.Participants)-1 <= 1 {
		events = append(events, event.BidWon{Player: ph.Leader, Bid: ph.Bid})
	}
	return events, nil
}

func buyWonBid(g *state.Game, c command.BuyWonBid) ([]event.Event, error) {
	ph, ok := g.Phase.(state.BuyingWonBid)
	if !ok || ph.Player != c.Player {
		return nil, apperrors.Illegal("%s 没有待支付的拍卖", c.Player)
	}
	p, _ := g.Player(c.Player)
	if err := payment(p, c.Cash, c.Borrowed, ph.Bid); err != nil {
		return nil, err
	}
	return accept(event.SpaceBought{Player: c.Player, Ground: ph.Ground, Cash: c.Cash, Borrowed: c.Borrowed})
}
