// Package event defines the closed catalog of game events. Events are facts:
// once appended to a game's log they are never rewritten, and folding them in
// order from the empty state reproduces the game.
package event

import (
	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/economy"
)

// Type is the wire discriminator of an event.
type Type string

// Setup and turn events.
const (
	TypeGameCreated          Type = "GameCreated"
	TypePlayerAdded          Type = "PlayerAdded"
	TypePromotedToGameMaster Type = "PromotedToGameMaster"
	TypeGameStarted          Type = "GameStarted"
	TypeNewTurnStarted       Type = "NewTurnStarted"
	TypeDiceRolled           Type = "DiceRolled"
	TypeStartMoneyReceived   Type = "StartMoneyReceived"
	TypeLandedOnSafeSpace    Type = "LandedOnSafeSpace"
	TypeLandedOnBuyableSpace Type = "LandedOnBuyableSpace"
	TypeSpaceBought          Type = "SpaceBought"
	TypeTurnEnded            Type = "TurnEnded"
)

// Auction events.
const (
	TypeBidStarted Type = "BidStarted"
	TypeBidPlaced  Type = "BidPlaced"
	TypeBidPassed  Type = "BidPassed"
	TypeBidWon     Type = "BidWon"
)

// Rent events.
const (
	TypeLandedOnHostileSpace Type = "LandedOnHostileSpace"
	TypeRentDemanded         Type = "RentDemanded"
	TypeRentPaid             Type = "RentPaid"
)

// Trade events.
const (
	TypeOfferAdded             Type = "OfferAdded"
	TypeOfferValueUpdated      Type = "OfferValueUpdated"
	TypeOfferRemoved           Type = "OfferRemoved"
	TypeTradeAccepted          Type = "TradeAccepted"
	TypeTradeAcceptanceRevoked Type = "TradeAcceptanceRevoked"
	TypeTradeCompleted         Type = "TradeCompleted"
)

// Event is one immutable fact in a game log. The variant set is closed.
//
//sumtype:decl
type Event interface {
	Type() Type
	isEvent()
}

// GameCreated opens a log. It snapshots the board and the economy so the log
// is self-contained.
type GameCreated struct {
	GameMaster string         `json:"gameMaster"`
	Board      *board.Board   `json:"board"`
	Economy    economy.Params `json:"economy"`
}

type PlayerAdded struct {
	Player string `json:"player"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

type PromotedToGameMaster struct {
	Player string `json:"player"`
}

// GameStarted fixes the turn order.
type GameStarted struct {
	Players []string `json:"players"`
}

type NewTurnStarted struct {
	Player string `json:"player"`
}

type DiceRolled struct {
	Player string `json:"player"`
	Die1   int    `json:"die1"`
	Die2   int    `json:"die2"`
}

// Total is the sum of both dice.
func (e DiceRolled) Total() int { return e.Die1 + e.Die2 }

// StartMoneyReceived moves Amount from the bank to Player. Amount may be
// negative when interest exceeds the payout.
type StartMoneyReceived struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

type LandedOnSafeSpace struct {
	Player string `json:"player"`
	Ground string `json:"ground"`
}

type LandedOnBuyableSpace struct {
	Player string `json:"player"`
	Ground string `json:"ground"`
}

// SpaceBought is emitted for direct purchases and for won auctions alike.
type SpaceBought struct {
	Player   string `json:"player"`
	Ground   string `json:"ground"`
	Cash     int    `json:"cash"`
	Borrowed int    `json:"borrowed"`
}

type TurnEnded struct {
	Player string `json:"player"`
}

type BidStarted struct {
	Ground        string `json:"ground"`
	DefaultWinner string `json:"defaultWinner"`
}

type BidPlaced struct {
	Player string `json:"player"`
	Bid    int    `json:"bid"`
}

type BidPassed struct {
	Player string `json:"player"`
}

type BidWon struct {
	Player string `json:"player"`
	Bid    int    `json:"bid"`
}

// LandedOnHostileSpace opens rent demand DemandID. DiceTotal is the roll that
// caused the landing; utility rent is computed from it.
type LandedOnHostileSpace struct {
	Player    string `json:"player"`
	Owner     string `json:"owner"`
	Ground    string `json:"ground"`
	DemandID  int    `json:"demandId"`
	DiceTotal int    `json:"diceTotal"`
}

type RentDemanded struct {
	DemandID int `json:"demandId"`
	Rent     int `json:"rent"`
}

type RentPaid struct {
	DemandID int    `json:"demandId"`
	Payer    string `json:"payer"`
	Owner    string `json:"owner"`
	Rent     int    `json:"rent"`
}

type OfferAdded struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
	Value   int    `json:"value"`
}

type OfferValueUpdated struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
	Value   int    `json:"value"`
}

type OfferRemoved struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
}

// TradeAccepted records From's acceptance and the money it proposes to move:
// CashDelta is cash From pays To, DebtDelta is debt From hands over to To.
type TradeAccepted struct {
	From      string `json:"from"`
	To        string `json:"to"`
	CashDelta int    `json:"cashDelta"`
	DebtDelta int    `json:"debtDelta"`
}

type TradeAcceptanceRevoked struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoneyDelta is a per-player change applied by a completed trade.
type MoneyDelta struct {
	Player string `json:"player"`
	Cash   int    `json:"cash"`
	Debt   int    `json:"debt"`
}

// Transfer moves an ownable; Value becomes its new asset value.
type Transfer struct {
	Ownable string `json:"ownable"`
	From    string `json:"from"`
	To      string `json:"to"`
	Value   int    `json:"value"`
}

// TradeCompleted settles the pairing between Players[0] and Players[1].
type TradeCompleted struct {
	Players   [2]string    `json:"players"`
	Deltas    []MoneyDelta `json:"deltas"`
	Transfers []Transfer   `json:"transfers"`
}

func (GameCreated) Type() Type            { return TypeGameCreated }
func (PlayerAdded) Type() Type            { return TypePlayerAdded }
func (PromotedToGameMaster) Type() Type   { return TypePromotedToGameMaster }
func (GameStarted) Type() Type            { return TypeGameStarted }
func (NewTurnStarted) Type() Type         { return TypeNewTurnStarted }
func (DiceRolled) Type() Type             { return TypeDiceRolled }
func (StartMoneyReceived) Type() Type     { return TypeStartMoneyReceived }
func (LandedOnSafeSpace) Type() Type      { return TypeLandedOnSafeSpace }
func (LandedOnBuyableSpace) Type() Type   { return TypeLandedOnBuyableSpace }
func (SpaceBought) Type() Type            { return TypeSpaceBought }
func (TurnEnded) Type() Type              { return TypeTurnEnded }
func (BidStarted) Type() Type             { return TypeBidStarted }
func (BidPlaced) Type() Type              { return TypeBidPlaced }
func (BidPassed) Type() Type              { return TypeBidPassed }
func (BidWon) Type() Type                 { return TypeBidWon }
func (LandedOnHostileSpace) Type() Type   { return TypeLandedOnHostileSpace }
func (RentDemanded) Type() Type           { return TypeRentDemanded }
func (RentPaid) Type() Type               { return TypeRentPaid }
func (OfferAdded) Type() Type             { return TypeOfferAdded }
func (OfferValueUpdated) Type() Type      { return TypeOfferValueUpdated }
func (OfferRemoved) Type() Type           { return TypeOfferRemoved }
func (TradeAccepted) Type() Type          { return TypeTradeAccepted }
func (TradeAcceptanceRevoked) Type() Type { return TypeTradeAcceptanceRevoked }
func (TradeCompleted) Type() Type         { return TypeTradeCompleted }

func (GameCreated) isEvent()            {}
func (PlayerAdded) isEvent()            {}
func (PromotedToGameMaster) isEvent()   {}
func (GameStarted) isEvent()            {}
func (NewTurnStarted) isEvent()         {}
func (DiceRolled) isEvent()             {}
func (StartMoneyReceived) isEvent()     {}
func (LandedOnSafeSpace) isEvent()      {}
func (LandedOnBuyableSpace) isEvent()   {}
func (SpaceBought) isEvent()            {}
func (TurnEnded) isEvent()              {}
func (BidStarted) isEvent()             {}
func (BidPlaced) isEvent()              {}
func (BidPassed) isEvent()              {}
func (BidWon) isEvent()                 {}
func (LandedOnHostileSpace) isEvent()   {}
func (RentDemanded) isEvent()           {}
func (RentPaid) isEvent()               {}
func (OfferAdded) isEvent()             {}
func (OfferValueUpdated) isEvent()      {}
func (OfferRemoved) isEvent()           {}
func (TradeAccepted) isEvent()          {}
func (TradeAcceptanceRevoked) isEvent() {}
func (TradeCompleted) isEvent()         {}
