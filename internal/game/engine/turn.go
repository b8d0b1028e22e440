package engine

import (
	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/economy"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// addPlayer 加入游戏，第一个加入者创建游戏并成为房主
func addPlayer(g *state.Game, setup Setup, c command.AddPlayer) ([]event.Event, error) {
	if g.Started {
		return nil, apperrors.Illegal("游戏已开始")
	}
	if c.Name == "" {
		return nil, apperrors.Illegal("昵称不能为空")
	}
	if c.Color == "" {
		return nil, apperrors.Illegal("颜色不能为空")
	}
	added := event.PlayerAdded{Player: c.Player, Name: c.Name, Color: c.Color}

	if !g.Created() {
		if setup.Board == nil {
			return nil, apperrors.Illegal("缺少棋盘")
		}
		if err := setup.Economy.Validate(); err != nil {
			return nil, apperrors.Illegal("经济参数无效: %v", err)
		}
		return accept(
			event.GameCreated{GameMaster: c.Player, Board: setup.Board, Economy: setup.Economy},
			added,
			event.PromotedToGameMaster{Player: c.Player},
		)
	}

	if g.HasPlayer(c.Player) {
		return nil, apperrors.Illegal("%s 已在游戏中", c.Player)
	}
	for _, p := range g.Players {
		if p.Color == c.Color {
			return nil, apperrors.Illegal("颜色 %s 已被 %s 使用", c.Color, p.ID)
		}
	}
	return accept(added)
}

// startGame 房主开始游戏，回合顺序为加入顺序
func startGame(g *state.Game, c command.StartGame) ([]event.Event, error) {
	if g.Started {
		return nil, apperrors.Illegal("游戏已开始")
	}
	if c.Player != g.GameMaster {
		return nil, apperrors.Illegal("只有房主可以开始游戏")
	}
	if len(g.Players) < 2 {
		return nil, apperrors.Illegal("至少需要 2 名玩家")
	}
	order := make([]string, len(g.Players))
	for i, p := range g.Players {
		order[i] = p.ID
	}
	return accept(
		event.GameStarted{Players: order},
		event.NewTurnStarted{Player: order[0]},
	)
}

func rollDice(g *state.Game, c command.RollDice, dice Dice) ([]event.Event, error) {
	ph, ok := g.Phase.(state.WaitingForDiceRoll)
	if !ok || ph.Player != c.Player {
		return nil, notYourMove(g, c.Player)
	}
	p, _ := g.Player(c.Player)

	d1, d2 := dice.Roll()
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return nil, apperrors.Illegal("无效的骰子点数 %d,%d", d1, d2)
	}
	rolled := event.DiceRolled{Player: c.Player, Die1: d1, Die2: d2}
	events := []event.Event{rolled}

	// 一次移动最多领一次起点奖励
	target := p.Position + rolled.Total()
	if target >= g.Board.Len() {
		amount := economy.StartMoney(g.Economy, g.Bank, p.Debt)
		events = append(events, event.StartMoneyReceived{Player: c.Player, Amount: amount})
	}
	target %= g.Board.Len()

	return append(events, landing(g, c.Player, target, rolled.Total())), nil
}

// landing 根据目标格子的所有权分类落点
func landing(g *state.Game, player string, target, diceTotal int) event.Event {
	space := g.Board.At(target)
	ground := space.SpaceID()
	if _, ok := g.Board.Ownable(ground); !ok {
		return event.LandedOnSafeSpace{Player: player, Ground: ground}
	}
	switch owner := g.Owner(ground); owner {
	case "":
		return event.LandedOnBuyableSpace{Player: player, Ground: ground}
	case player:
		return event.LandedOnSafeSpace{Player: player, Ground: ground}
	default:
		return event.LandedOnHostileSpace{
			Player:    player,
			Owner:     owner,
			Ground:    ground,
			DemandID:  g.NextDemandID,
			DiceTotal: diceTotal,
		}
	}
}

func buyThisSpace(g *state.Game, c command.BuyThisSpace) ([]event.Event, error) {
	ph, ok := g.Phase.(state.LandedOnNewGround)
	if !ok || ph.Player != c.Player {
		return nil, notYourMove(g, c.Player)
	}
	ownable, _ := g.Board.Ownable(ph.Ground)
	p, _ := g.Player(c.Player)
	if err := payment(p, c.Cash, c.Borrowed, ownable.Price()); err != nil {
		return nil, err
	}
	return accept(event.SpaceBought{Player: c.Player, Ground: ph.Ground, Cash: c.Cash, Borrowed: c.Borrowed})
}

// declineThisSpace 放弃购买，进入拍卖，默认赢家为下一位玩家
func declineThisSpace(g *state.Game, c command.DeclineThisSpace) ([]event.Event, error) {
	ph, ok := g.Phase.(state.LandedOnNewGround)
	if !ok || ph.Player != c.Player {
		return nil, notYourMove(g, c.Player)
	}
	return accept(event.BidStarted{Ground: ph.Ground, DefaultWinner: g.NextPlayer(c.Player)})
}

func endTurn(g *state.Game, c command.EndTurn) ([]event.Event, error) {
	ph, ok := g.Phase.(state.WaitingForEndTurn)
	if !ok || ph.Player != c.Player {
		return nil, notYourMove(g, c.Player)
	}
	return accept(
		event.TurnEnded{Player: c.Player},
		event.NewTurnStarted{Player: g.NextPlayer(c.Player)},
	)
}

func notYourMove(g *state.Game, player string) error {
	if !g.Started {
		return apperrors.Illegal("游戏尚未开始")
	}
	if active := state.ActivePlayer(g.Phase); active != player {
		return apperrors.Illegal("还没轮到 %s", player)
	}
	return apperrors.Illegal("%s 阶段不能执行该操作", g.Phase.Name())
}
