package engine

import (
	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// demandRent 只有被落地的所有者可以收租，租金按收租时的状态计算
func demandRent(g *state.Game, c command.DemandRent) ([]event.Event, error) {
	d, ok := g.Demands[c.DemandID]
	if !ok {
		return nil, apperrors.Illegal("租金请求 %d 不存在", c.DemandID)
	}
	if d.Owner != c.Player {
		return nil, apperrors.Illegal("%s 不能收取租金请求 %d", c.Player, c.DemandID)
	}
	switch d.Status {
	case state.DemandDemanded:
		return nil, apperrors.Illegal("租金请求 %d 已发出", c.DemandID)
	case state.DemandPaid:
		return nil, apperrors.Illegal("租金请求 %d 已支付", c.DemandID)
	}
	// 地产易主后未发出的请求作废
	if g.Owner(d.Ground) != d.Owner {
		return nil, apperrors.Illegal("%s 已不再持有 %s", d.Owner, d.Ground)
	}
	return accept(event.RentDemanded{DemandID: d.ID, Rent: Rent(g, d.Ground, d.DiceTotal)})
}

func payRent(g *state.Game, c command.PayRent) ([]event.Event, error) {
	d, ok := g.Demands[c.DemandID]
	if !ok {
		return nil, apperrors.Illegal("租金请求 %d 不存在", c.DemandID)
	}
	if d.Payer != c.Player {
		return nil, apperrors.Illegal("租金请求 %d 不属于 %s", c.DemandID, c.Player)
	}
	switch d.Status {
	case state.DemandLanded:
		return nil, apperrors.Illegal("租金请求 %d 尚未发出", c.DemandID)
	case state.DemandPaid:
		return nil, apperrors.Illegal("租金请求 %d 已支付", c.DemandID)
	}
	return accept(event.RentPaid{DemandID: d.ID, Payer: d.Payer, Owner: d.Owner, Rent: d.Rent})
}

// Rent computes the rent currently due on an owned ground. diceTotal is only
// used by utilities. Unowned or non-ownable ground rents for 0.
func Rent(g *state.Game, ground string, diceTotal int) int {
	owner := g.Owner(ground)
	space, ok := g.Board.Ownable(ground)
	if owner == "" || !ok {
		return 0
	}

	switch s := space.(type) {
	case board.Street:
		switch {
		case s.BuildState.Hotel:
			return s.RentHotel
		case s.BuildState.Houses > 0:
			return s.RentPerHouseCount[s.BuildState.Houses-1]
		}
		group := g.Board.ColorGroup(s.Color)
		if g.OwnedBy(owner, group) == len(group) {
			return 2 * s.Rent
		}
		return s.Rent
	case board.Station:
		held := g.OwnedBy(owner, g.Board.SameKind(board.KindStation))
		return s.RentBySharedCount[schedule(held, len(s.RentBySharedCount))]
	case board.Utility:
		all := g.Board.SameKind(board.KindUtility)
		held := g.OwnedBy(owner, all)
		i := schedule(held, len(s.RentFactorBySharedCount))
		if held == len(all) {
			i = len(s.RentFactorBySharedCount) - 1
		}
		return s.RentFactorBySharedCount[i] * diceTotal
	default:
		panic("engine: unknown ownable " + ground)
	}
}

// schedule maps a held count onto a rent table index.
func schedule(held, size int) int {
	return min(max(held, 1), size) - 1
}
