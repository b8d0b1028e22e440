// Package state is the projection of a game's event log. It is a pure fold:
// server and clients feed it the same events and get the same Game.
package state

import (
	"fmt"
	"maps"
	"slices"

	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/economy"
)

// Game 投影后的游戏状态
type Game struct {
	// Version 已折叠的事件数
	Version    int
	Board      *board.Board
	Economy    economy.Params
	Bank       int
	GameMaster string
	Started    bool
	// Players 按加入顺序
	Players []Player
	// Order 回合顺序，GameStarted 之后有效
	Order []string
	// Deeds 所有权，键为格子 ID
	Deeds map[string]Deed
	Phase Phase
	// Demands 租金请求，键为 demandId
	Demands      map[int]Demand
	NextDemandID int
	LastDice     [2]int

	index map[string]int
}

// Player 玩家
type Player struct {
	ID       string
	Name     string
	Color    string
	Money    int
	Debt     int
	Position int
	// Assets 持有地产价值之和
	Assets int
	// Trades 与每个对手的交易中本方的一侧
	Trades map[string]*TradeParty
}

// Deed 地契
type Deed struct {
	Owner      string
	AssetValue int
}

// Offer 交易中的一项地产报价
type Offer struct {
	Ownable string
	Value   int
}

// TradeParty 交易中一方的报价与接受状态
type TradeParty struct {
	Offers   []Offer
	Accepted bool
	// Cash/Debt 接受时提出的资金调整
	Cash int
	Debt int
}

// DemandStatus 租金请求状态
type DemandStatus int

const (
	DemandLanded DemandStatus = iota
	DemandDemanded
	DemandPaid
)

func (s DemandStatus) String() string {
	switch s {
	case DemandLanded:
		return "landed"
	case DemandDemanded:
		return "demanded"
	case DemandPaid:
		return "paid"
	default:
		return fmt.Sprintf("DemandStatus(%d)", int(s))
	}
}

// Demand 一次敌方落地产生的租金请求
type Demand struct {
	ID        int
	Payer     string
	Owner     string
	Ground    string
	DiceTotal int
	Rent      int
	Status    DemandStatus
}

// New 返回空状态，即投影的起点
func New() *Game {
	return &Game{
		Deeds:        make(map[string]Deed),
		Phase:        WaitingForStart{},
		Demands:      make(map[int]Demand),
		NextDemandID: 1,
		index:        make(map[string]int),
	}
}

// Created 是否已折叠 GameCreated
func (g *Game) Created() bool {
	return g.Board != nil
}

// Player 按 ID 查找玩家
func (g *Game) Player(id string) (*Player, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Players[i], true
}

// HasPlayer 玩家是否已加入
func (g *Game) HasPlayer(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Owner 返回格子的所有者，未被持有时返回 ""
func (g *Game) Owner(spaceID string) string {
	return g.Deeds[spaceID].Owner
}

// OwnedBy 返回 ids 中被 owner 持有的数量
func (g *Game) OwnedBy(owner string, ids []string) int {
	n := 0
	for _, id := range ids {
		if g.Deeds[id].Owner == owner {
			n++
		}
	}
	return n
}

// NextPlayer 回合顺序中 id 之后的玩家
func (g *Game) NextPlayer(id string) string {
	i := slices.Index(g.Order, id)
	if i < 0 || len(g.Order) == 0 {
		return ""
	}
	return g.Order[(i+1)%len(g.Order)]
}

// Party 返回 from 对 to 的交易一侧，不存在时返回零值
func (g *Game) Party(from, to string) TradeParty {
	p, ok := g.Player(from)
	if !ok {
		return TradeParty{}
	}
	if tp := p.Trades[to]; tp != nil {
		return *tp
	}
	return TradeParty{}
}

// Offers 返回 from 对 to 的报价列表
func (g *Game) Offers(from, to string) []Offer {
	return g.Party(from, to).Offers
}

// OfferIndex 返回报价位置，不存在返回 -1
func (tp TradeParty) OfferIndex(ownable string) int {
	return slices.IndexFunc(tp.Offers, func(o Offer) bool { return o.Ownable == ownable })
}

// Clone 深拷贝，Board 不可变因此共享
func (g *Game) Clone() *Game {
	c := *g
	c.Players = slices.Clone(g.Players)
	for i, p := range c.Players {
		if p.Trades != nil {
			p.Trades = make(map[string]*TradeParty, len(p.Trades))
			for k, tp := range g.Players[i].Trades {
				cp := *tp
				cp.Offers = slices.Clone(tp.Offers)
				p.Trades[k] = &cp
			}
		}
		c.Players[i] = p
	}
	c.Order = slices.Clone(g.Order)
	c.Deeds = maps.Clone(g.Deeds)
	c.Demands = maps.Clone(g.Demands)
	c.index = maps.Clone(g.index)
	c.Phase = clonePhase(g.Phase)
	return &c
}

func clonePhase(p Phase) Phase {
	switch v := p.(type) {
	case Bidding:
		v.Participants = slices.Clone(v.Participants)
		v.Passed = slices.Clone(v.Passed)
		return v
	default:
		return p
	}
}
