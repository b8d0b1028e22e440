package state

import (
	"slices"

	"github.com/palemoky/property-tycoon/internal/game/economy"
)

// View is a read-only rendering of a Game for one viewer. An empty viewer
// gets the spectator view.
type View struct {
	Viewer       string       `json:"viewer,omitempty"`
	Version      int          `json:"version"`
	Phase        string       `json:"phase"`
	ActivePlayer string       `json:"activePlayer,omitempty"`
	NotMyTurn    bool         `json:"notMyTurn"`
	GameMaster   string       `json:"gameMaster"`
	Started      bool         `json:"started"`
	Bank         int          `json:"bank"`
	Dice         [2]int       `json:"dice"`
	Players      []PlayerView `json:"players"`
	Deeds        []DeedView   `json:"deeds"`
	Pending      *PendingView `json:"pending,omitempty"`
	Auction      *AuctionView `json:"auction,omitempty"`
	Trades       []TradeView  `json:"trades,omitempty"`
	// RentDemandedForMe 等待我支付的租金
	RentDemandedForMe []DemandView `json:"rentDemandedForMe,omitempty"`
	// RentToDemand 我可以收取的租金
	RentToDemand []DemandView `json:"rentToDemand,omitempty"`
}

type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Money    int    `json:"money"`
	Debt     int    `json:"debt"`
	Assets   int    `json:"assets"`
	NetWorth int    `json:"netWorth"`
	Position int    `json:"position"`
	Space    string `json:"space"`
}

type DeedView struct {
	Space      string `json:"space"`
	Owner      string `json:"owner"`
	AssetValue int    `json:"assetValue"`
}

// PendingView 待当前玩家决定的购买
type PendingView struct {
	Player string `json:"player"`
	Ground string `json:"ground"`
	Price  int    `json:"price"`
}

type AuctionView struct {
	Ground        string   `json:"ground"`
	DefaultWinner string   `json:"defaultWinner"`
	Leader        string   `json:"leader"`
	Bid           int      `json:"bid"`
	Participants  []string `json:"participants"`
	Passed        []string `json:"passed"`
}

type OfferView struct {
	Ownable string `json:"ownable"`
	Value   int    `json:"value"`
}

// TradeView 观察者与某个对手之间的交易
type TradeView struct {
	Counterpart string      `json:"counterpart"`
	Mine        []OfferView `json:"mine"`
	Theirs      []OfferView `json:"theirs"`
	IAccepted   bool        `json:"iAccepted"`
	TheyAccept  bool        `json:"theyAccepted"`
}

type DemandView struct {
	ID     int    `json:"id"`
	Payer  string `json:"payer"`
	Owner  string `json:"owner"`
	Ground string `json:"ground"`
	Rent   int    `json:"rent"`
	Status string `json:"status"`
}

// Render 为 viewer 生成视图
func Render(g *Game, viewer string) View {
	active := ActivePlayer(g.Phase)
	v := View{
		Viewer:       viewer,
		Version:      g.Version,
		Phase:        g.Phase.Name(),
		ActivePlayer: active,
		NotMyTurn:    viewer == "" || viewer != active,
		GameMaster:   g.GameMaster,
		Started:      g.Started,
		Bank:         g.Bank,
		Dice:         g.LastDice,
	}

	for _, p := range g.Players {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Money:    p.Money,
			Debt:     p.Debt,
			Assets:   p.Assets,
			NetWorth: economy.NetWorth(p.Money, p.Assets, p.Debt),
			Position: p.Position,
		}
		if g.Board != nil {
			pv.Space = g.Board.At(p.Position).SpaceID()
		}
		v.Players = append(v.Players, pv)
	}

	if g.Board != nil {
		for _, s := range g.Board.Spaces() {
			if d, ok := g.Deeds[s.SpaceID()]; ok {
				v.Deeds = append(v.Deeds, DeedView{Space: s.SpaceID(), Owner: d.Owner, AssetValue: d.AssetValue})
			}
		}
	}

	switch ph := g.Phase.(type) {
	case LandedOnNewGround:
		v.Pending = &PendingView{Player: ph.Player, Ground: ph.Ground, Price: g.price(ph.Ground)}
	case BuyingWonBid:
		v.Pending = &PendingView{Player: ph.Player, Ground: ph.Ground, Price: ph.Bid}
	case Bidding:
		v.Auction = &AuctionView{
			Ground:        ph.Ground,
			DefaultWinner: ph.DefaultWinner,
			Leader:        ph.Leader,
			Bid:           ph.Bid,
			Participants:  slices.Clone(ph.Participants),
			Passed:        slices.Clone(ph.Passed),
		}
	}

	if me, ok := g.Player(viewer); ok {
		for _, other := range g.Players {
			if other.ID == viewer {
				continue
			}
			mine := g.Party(viewer, other.ID)
			theirs := g.Party(other.ID, viewer)
			if len(mine.Offers) == 0 && len(theirs.Offers) == 0 && !mine.Accepted && !theirs.Accepted {
				continue
			}
			v.Trades = append(v.Trades, TradeView{
				Counterpart: other.ID,
				Mine:        offerViews(mine.Offers),
				Theirs:      offerViews(theirs.Offers),
				IAccepted:   mine.Accepted,
				TheyAccept:  theirs.Accepted,
			})
		}

		ids := make([]int, 0, len(g.Demands))
		for id := range g.Demands {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			d := g.Demands[id]
			switch {
			case d.Payer == me.ID && d.Status == DemandDemanded:
				v.RentDemandedForMe = append(v.RentDemandedForMe, demandView(d))
			case d.Owner == me.ID && d.Status == DemandLanded:
				v.RentToDemand = append(v.RentToDemand, demandView(d))
			}
		}
	}
	return v
}

func (g *Game) price(ground string) int {
	if o, ok := g.Board.Ownable(ground); ok {
		return o.Price()
	}
	return 0
}

func offerViews(offers []Offer) []OfferView {
	out := make([]OfferView, len(offers))
	for i, o := range offers {
		out[i] = OfferView(o)
	}
	return out
}

func demandView(d Demand) DemandView {
	return DemandView{
		ID:     d.ID,
		Payer:  d.Payer,
		Owner:  d.Owner,
		Ground: d.Ground,
		Rent:   d.Rent,
		Status: d.Status.String(),
	}
}
