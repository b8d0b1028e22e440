package engine

import (
	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// pairing 校验交易双方
func pairing(g *state.Game, from, to string) error {
	if !g.Started {
		return apperrors.Illegal("游戏尚未开始")
	}
	if from == to {
		return apperrors.Illegal("不能与自己交易")
	}
	if !g.HasPlayer(to) {
		return apperrors.Illegal("%s 不在游戏中", to)
	}
	return nil
}

func addOffer(g *state.Game, c command.AddOffer) ([]event.Event, error) {
	if err := pairing(g, c.From, c.To); err != nil {
		return nil, err
	}
	if _, ok := g.Board.Ownable(c.Ownable); !ok {
		return nil, apperrors.Illegal("%s 不可交易", c.Ownable)
	}
	if g.Owner(c.Ownable) != c.From {
		return nil, apperrors.Illegal("%s 不持有 %s", c.From, c.Ownable)
	}
	if g.Party(c.From, c.To).OfferIndex(c.Ownable) >= 0 {
		return nil, apperrors.Illegal("%s 已在报价中", c.Ownable)
	}
	if c.Value < 0 {
		return nil, apperrors.Illegal("报价不能为负")
	}
	return accept(event.OfferAdded{From: c.From, To: c.To, Ownable: c.Ownable, Value: c.Value})
}

func updateOfferValue(g *state.Game, c command.UpdateOfferValue) ([]event.Event, error) {
	if err := pairing(g, c.From, c.To); err != nil {
		return nil, err
	}
	if g.Party(c.From, c.To).OfferIndex(c.Ownable) < 0 {
		return nil, apperrors.Illegal("%s 不在报价中", c.Ownable)
	}
	if c.Value < 0 {
		return nil, apperrors.Illegal("报价不能为负")
	}
	return accept(event.OfferValueUpdated{From: c.From, To: c.To, Ownable: c.Ownable, Value: c.Value})
}

func removeOffer(g *state.Game, c command.RemoveOffer) ([]event.Event, error) {
	if err := pairing(g, c.From, c.To); err != nil {
		return nil, err
	}
	if g.Party(c.From, c.To).OfferIndex(c.Ownable) < 0 {
		return nil, apperrors.Illegal("%s 不在报价中", c.Ownable)
	}
	return accept(event.OfferRemoved{From: c.From, To: c.To, Ownable: c.Ownable})
}

// acceptTrade records From's acceptance; when To has already accepted the
// trade settles in the same step.
func acceptTrade(g *state.Game, c command.AcceptTrade) ([]event.Event, error) {
	if err := pairing(g, c.From, c.To); err != nil {
		return nil, err
	}
	mine := g.Party(c.From, c.To)
	if mine.Accepted {
		return nil, apperrors.Illegal("%s 已接受交易", c.From)
	}
	accepted := event.TradeAccepted{From: c.From, To: c.To, CashDelta: c.CashDelta, DebtDelta: c.DebtDelta}

	theirs := g.Party(c.To, c.From)
	if !theirs.Accepted {
		return accept(accepted)
	}
	completed, err := settle(g, c, mine, theirs)
	if err != nil {
		return nil, err
	}
	return accept(accepted, completed)
}

func settle(g *state.Game, c command.AcceptTrade, mine, theirs state.TradeParty) (event.TradeCompleted, error) {
	from, _ := g.Player(c.From)
	to, _ := g.Player(c.To)

	fromDelta := event.MoneyDelta{Player: c.From, Cash: theirs.Cash - c.CashDelta, Debt: theirs.Debt - c.DebtDelta}
	toDelta := event.MoneyDelta{Player: c.To, Cash: c.CashDelta - theirs.Cash, Debt: c.DebtDelta - theirs.Debt}
	if from.Debt+fromDelta.Debt < 0 || to.Debt+toDelta.Debt < 0 {
		return event.TradeCompleted{}, apperrors.Illegal("债务不能为负")
	}

	transfers := make([]event.Transfer, 0, len(mine.Offers)+len(theirs.Offers))
	for _, o := range mine.Offers {
		if g.Owner(o.Ownable) != c.From {
			return event.TradeCompleted{}, apperrors.Illegal("%s 已不再持有 %s", c.From, o.Ownable)
		}
		transfers = append(transfers, event.Transfer{Ownable: o.Ownable, From: c.From, To: c.To, Value: o.Value})
	}
	for _, o := range theirs.Offers {
		if g.Owner(o.Ownable) != c.To {
			return event.TradeCompleted{}, apperrors.Illegal("%s 已不再持有 %s", c.To, o.Ownable)
		}
		transfers = append(transfers, event.Transfer{Ownable: o.Ownable, From: c.To, To: c.From, Value: o.Value})
	}

	return event.TradeCompleted{
		Players:   [2]string{c.From, c.To},
		Deltas:    []event.MoneyDelta{fromDelta, toDelta},
		Transfers: transfers,
	}, nil
}

func revokeTradeAcceptance(g *state.Game, c command.RevokeTradeAcceptance) ([]event.Event, error) {
	if err := pairing(g, c.From, c.To); err != nil {
		return nil, err
	}
	if !g.Party(c.From, c.To).Accepted {
		return nil, apperrors.Illegal("%s 尚未接受交易", c.From)
	}
	return accept(event.TradeAcceptanceRevoked{From: c.From, To: c.To})
}
