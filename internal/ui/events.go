package ui

import (
	"fmt"

	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/ui/common"
)

// describe 把事件转成一行日志，g 为折叠该事件之后的状态
func describe(g *state.Game, e event.Event) string {
	name := func(id string) string { return playerName(g, id) }
	space := func(id string) string { return spaceName(g, id) }

	switch ev := e.(type) {
	case event.GameCreated:
		return fmt.Sprintf("🎲 游戏已创建，棋盘共 %d 格", ev.Board.Len())
	case event.PlayerAdded:
		return fmt.Sprintf("👋 %s 加入了游戏", ev.Name)
	case event.PromotedToGameMaster:
		return fmt.Sprintf("%s %s 成为房主", common.GameMasterIcon, name(ev.Player))
	case event.GameStarted:
		return "🚀 游戏开始"
	case event.NewTurnStarted:
		return fmt.Sprintf("轮到 %s", name(ev.Player))
	case event.DiceRolled:
		return fmt.Sprintf("%s %s 掷出 %d + %d", common.DiceIcon, name(ev.Player), ev.Die1, ev.Die2)
	case event.StartMoneyReceived:
		return fmt.Sprintf("%s 经过起点，获得 %s", name(ev.Player), common.Money(ev.Amount))
	case event.LandedOnSafeSpace:
		return fmt.Sprintf("%s 停在 %s", name(ev.Player), space(ev.Ground))
	case event.LandedOnBuyableSpace:
		return fmt.Sprintf("%s 停在无主的 %s", name(ev.Player), space(ev.Ground))
	case event.SpaceBought:
		return fmt.Sprintf("🏠 %s 买下 %s（现金 %s，借款 %s）", name(ev.Player), space(ev.Ground), common.Money(ev.Cash), common.Money(ev.Borrowed))
	case event.TurnEnded:
		return fmt.Sprintf("%s 结束回合", name(ev.Player))
	case event.BidStarted:
		return fmt.Sprintf("🔨 %s 开始拍卖", space(ev.Ground))
	case event.BidPlaced:
		return fmt.Sprintf("%s 出价 %s", name(ev.Player), common.Money(ev.Bid))
	case event.BidPassed:
		return fmt.Sprintf("%s 放弃竞拍", name(ev.Player))
	case event.BidWon:
		return fmt.Sprintf("🔨 %s 以 %s 拍得", name(ev.Player), common.Money(ev.Bid))
	case event.LandedOnHostileSpace:
		return fmt.Sprintf("%s 停在 %s 的 %s", name(ev.Player), name(ev.Owner), space(ev.Ground))
	case event.RentDemanded:
		return fmt.Sprintf("💰 收取租金 %s（#%d）", common.Money(ev.Rent), ev.DemandID)
	case event.RentPaid:
		return fmt.Sprintf("💰 %s 向 %s 支付租金 %s", name(ev.Payer), name(ev.Owner), common.Money(ev.Rent))
	case event.OfferAdded:
		return fmt.Sprintf("🤝 %s 向 %s 提出 %s（%s）", name(ev.From), name(ev.To), space(ev.Ownable), common.Money(ev.Value))
	case event.OfferValueUpdated:
		return fmt.Sprintf("🤝 %s 把 %s 改为 %s", name(ev.From), space(ev.Ownable), common.Money(ev.Value))
	case event.OfferRemoved:
		return fmt.Sprintf("🤝 %s 撤回 %s", name(ev.From), space(ev.Ownable))
	case event.TradeAccepted:
		return fmt.Sprintf("🤝 %s 接受与 %s 的交易", name(ev.From), name(ev.To))
	case event.TradeAcceptanceRevoked:
		return fmt.Sprintf("🤝 %s 撤销接受", name(ev.From))
	case event.TradeCompleted:
		return fmt.Sprintf("🤝 %s 与 %s 完成交易，转移 %d 处地产", name(ev.Players[0]), name(ev.Players[1]), len(ev.Transfers))
	default:
		return string(e.Type())
	}
}

func playerName(g *state.Game, id string) string {
	if p, ok := g.Player(id); ok {
		return p.Name
	}
	return id
}

func spaceName(g *state.Game, id string) string {
	if g.Board != nil {
		if s, ok := g.Board.Space(id); ok {
			return s.SpaceText()
		}
	}
	return id
}
