// Package engine decides which events a command produces against the current
// projection and owns the aggregate that folds them.
package engine

import (
	"math/rand/v2"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/economy"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// Setup 建局参数，仅在第一个 AddPlayer 时写入 GameCreated
type Setup struct {
	Board   *board.Board
	Economy economy.Params
}

// DefaultSetup 经典棋盘 + 默认经济参数
func DefaultSetup() Setup {
	return Setup{Board: board.Classic(), Economy: economy.Default()}
}

// Dice 骰子
type Dice interface {
	Roll() (int, int)
}

// RandomDice 两枚六面骰
type RandomDice struct{}

func (RandomDice) Roll() (int, int) {
	return rand.IntN(6) + 1, rand.IntN(6) + 1
}

// Decide validates cmd against g at expectedVersion and returns the events it
// produces. It never modifies g. A stale version yields ErrVersionConflict;
// any domain rule violation yields ErrIllegalCommand.
func Decide(g *state.Game, setup Setup, cmd command.Command, expectedVersion int, dice Dice) ([]event.Event, error) {
	if expectedVersion != g.Version {
		return nil, apperrors.Conflict(expectedVersion, g.Version)
	}
	if cmd == nil {
		return nil, apperrors.ErrInvalidMessage
	}
	if cmd.Actor() == "" {
		return nil, apperrors.Illegal("缺少玩家")
	}
	if _, ok := cmd.(command.AddPlayer); !ok {
		if !g.Created() {
			return nil, apperrors.Illegal("游戏尚未创建")
		}
		if !g.HasPlayer(cmd.Actor()) {
			return nil, apperrors.Illegal("%s 不在游戏中", cmd.Actor())
		}
	}

	switch c := cmd.(type) {
	case command.AddPlayer:
		return addPlayer(g, setup, c)
	case command.StartGame:
		return startGame(g, c)
	case command.RollDice:
		return rollDice(g, c, dice)
	case command.BuyThisSpace:
		return buyThisSpace(g, c)
	case command.DeclineThisSpace:
		return declineThisSpace(g, c)
	case command.EndTurn:
		return endTurn(g, c)
	case command.PlaceBid:
		return placeBid(g, c)
	case command.PassBid:
		return passBid(g, c)
	case command.BuyWonBid:
		return buyWonBid(g, c)
	case command.DemandRent:
		return demandRent(g, c)
	case command.PayRent:
		return payRent(g, c)
	case command.AddOffer:
		return addOffer(g, c)
	case command.UpdateOfferValue:
		return updateOfferValue(g, c)
	case command.RemoveOffer:
		return removeOffer(g, c)
	case command.AcceptTrade:
		return acceptTrade(g, c)
	case command.RevokeTradeAcceptance:
		return revokeTradeAcceptance(g, c)
	default:
		panic("engine: unknown command " + string(cmd.Type()))
	}
}

func accept(events ...event.Event) ([]event.Event, error) {
	return events, nil
}

// payment checks a cash/borrowed split for a purchase of exactly price.
func payment(p *state.Player, cash, borrowed, price int) error {
	if cash < 0 || borrowed < 0 {
		return apperrors.Illegal("金额不能为负")
	}
	if cash+borrowed != price {
		return apperrors.Illegal("现金 %d + 借款 %d 不等于价格 %d", cash, borrowed, price)
	}
	if cash > p.Money {
		return apperrors.Illegal("现金不足: 需要 %d, 持有 %d", cash, p.Money)
	}
	return nil
}
