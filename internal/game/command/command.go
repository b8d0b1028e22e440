// Package command defines the closed catalog of requests a player can submit
// to a game. A command is accepted into one or more events or rejected whole.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/property-tycoon/internal/game/wire"
)

// Type is the wire discriminator of a command.
type Type string

const (
	TypeAddPlayer             Type = "AddPlayer"
	TypeStartGame             Type = "StartGame"
	TypeRollDice              Type = "RollDice"
	TypeBuyThisSpace          Type = "BuyThisSpace"
	TypeDeclineThisSpace      Type = "DeclineThisSpace"
	TypePlaceBid              Type = "PlaceBid"
	TypePassBid               Type = "PassBid"
	TypeBuyWonBid             Type = "BuyWonBid"
	TypeDemandRent            Type = "DemandRent"
	TypePayRent               Type = "PayRent"
	TypeEndTurn               Type = "EndTurn"
	TypeAddOffer              Type = "AddOffer"
	TypeUpdateOfferValue      Type = "UpdateOfferValue"
	TypeRemoveOffer           Type = "RemoveOffer"
	TypeAcceptTrade           Type = "AcceptTrade"
	TypeRevokeTradeAcceptance Type = "RevokeTradeAcceptance"
)

// Command is a request from one player. The variant set is closed.
//
//sumtype:decl
type Command interface {
	Type() Type
	// Actor is the player issuing the command.
	Actor() string
	// WithActor returns a copy issued by id. Transports use it to stamp the
	// authenticated caller over whatever the client sent.
	WithActor(id string) Command
	isCommand()
}

// AddPlayer joins a player before the game starts. The first accepted
// AddPlayer creates the game and makes the player its game master.
type AddPlayer struct {
	Player string `json:"player"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

type StartGame struct {
	Player string `json:"player"`
}

type RollDice struct {
	Player string `json:"player"`
}

// BuyThisSpace buys the space just landed on; Cash+Borrowed must equal its price.
type BuyThisSpace struct {
	Player   string `json:"player"`
	Cash     int    `json:"cash"`
	Borrowed int    `json:"borrowed"`
}

type DeclineThisSpace struct {
	Player string `json:"player"`
}

type PlaceBid struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

type PassBid struct {
	Player string `json:"player"`
}

// BuyWonBid settles a won auction; Cash+Borrowed must equal the winning bid.
type BuyWonBid struct {
	Player   string `json:"player"`
	Cash     int    `json:"cash"`
	Borrowed int    `json:"borrowed"`
}

type DemandRent struct {
	Player   string `json:"player"`
	DemandID int    `json:"demandId"`
}

type PayRent struct {
	Player   string `json:"player"`
	DemandID int    `json:"demandId"`
}

type EndTurn struct {
	Player string `json:"player"`
}

type AddOffer struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
	Value   int    `json:"value"`
}

type UpdateOfferValue struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
	Value   int    `json:"value"`
}

type RemoveOffer struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Ownable string `json:"ownable"`
}

type AcceptTrade struct {
	From      string `json:"from"`
	To        string `json:"to"`
	CashDelta int    `json:"cashDelta"`
	DebtDelta int    `json:"debtDelta"`
}

type RevokeTradeAcceptance struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (AddPlayer) Type() Type             { return TypeAddPlayer }
func (StartGame) Type() Type             { return TypeStartGame }
func (RollDice) Type() Type              { return TypeRollDice }
func (BuyThisSpace) Type() Type          { return TypeBuyThisSpace }
func (DeclineThisSpace) Type() Type      { return TypeDeclineThisSpace }
func (PlaceBid) Type() Type              { return TypePlaceBid }
func (PassBid) Type() Type               { return TypePassBid }
func (BuyWonBid) Type() Type             { return TypeBuyWonBid }
func (DemandRent) Type() Type            { return TypeDemandRent }
func (PayRent) Type() Type               { return TypePayRent }
func (EndTurn) Type() Type               { return TypeEndTurn }
func (AddOffer) Type() Type              { return TypeAddOffer }
func (UpdateOfferValue) Type() Type      { return TypeUpdateOfferValue }
func (RemoveOffer) Type() Type           { return TypeRemoveOffer }
func (AcceptTrade) Type() Type           { return TypeAcceptTrade }
func (RevokeTradeAcceptance) Type() Type { return TypeRevokeTradeAcceptance }

func (c AddPlayer) Actor() string             { return c.Player }
func (c StartGame) Actor() string             { return c.Player }
func (c RollDice) Actor() string              { return c.Player }
func (c BuyThisSpace) Actor() string          { return c.Player }
func (c DeclineThisSpace) Actor() string      { return c.Player }
func (c PlaceBid) Actor() string              { return c.Player }
func (c PassBid) Actor() string               { return c.Player }
func (c BuyWonBid) Actor() string             { return c.Player }
func (c DemandRent) Actor() string            { return c.Player }
func (c PayRent) Actor() string               { return c.Player }
func (c EndTurn) Actor() string               { return c.Player }
func (c AddOffer) Actor() string              { return c.From }
func (c UpdateOfferValue) Actor() string      { return c.From }
func (c RemoveOffer) Actor() string           { return c.From }
func (c AcceptTrade) Actor() string           { return c.From }
func (c RevokeTradeAcceptance) Actor() string { return c.From }

func (c AddPlayer) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c StartGame) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c RollDice) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c BuyThisSpace) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c DeclineThisSpace) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c PlaceBid) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c PassBid) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c BuyWonBid) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c DemandRent) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c PayRent) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c EndTurn) WithActor(id string) Command {
	c.Player = id
	return c
}

func (c AddOffer) WithActor(id string) Command {
	c.From = id
	return c
}

func (c UpdateOfferValue) WithActor(id string) Command {
	c.From = id
	return c
}

func (c RemoveOffer) WithActor(id string) Command {
	c.From = id
	return c
}

func (c AcceptTrade) WithActor(id string) Command {
	c.From = id
	return c
}

func (c RevokeTradeAcceptance) WithActor(id string) Command {
	c.From = id
	return c
}

func (AddPlayer) isCommand()             {}
func (StartGame) isCommand()             {}
func (RollDice) isCommand()              {}
func (BuyThisSpace) isCommand()          {}
func (DeclineThisSpace) isCommand()      {}
func (PlaceBid) isCommand()              {}
func (PassBid) isCommand()               {}
func (BuyWonBid) isCommand()             {}
func (DemandRent) isCommand()            {}
func (PayRent) isCommand()               {}
func (EndTurn) isCommand()               {}
func (AddOffer) isCommand()              {}
func (UpdateOfferValue) isCommand()      {}
func (RemoveOffer) isCommand()           {}
func (AcceptTrade) isCommand()           {}
func (RevokeTradeAcceptance) isCommand() {}

var decoders = map[Type]func([]byte) (Command, error){
	TypeAddPlayer:             decode[AddPlayer],
	TypeStartGame:             decode[StartGame],
	TypeRollDice:              decode[RollDice],
	TypeBuyThisSpace:          decode[BuyThisSpace],
	TypeDeclineThisSpace:      decode[DeclineThisSpace],
	TypePlaceBid:              decode[PlaceBid],
	TypePassBid:               decode[PassBid],
	TypeBuyWonBid:             decode[BuyWonBid],
	TypeDemandRent:            decode[DemandRent],
	TypePayRent:               decode[PayRent],
	TypeEndTurn:               decode[EndTurn],
	TypeAddOffer:              decode[AddOffer],
	TypeUpdateOfferValue:      decode[UpdateOfferValue],
	TypeRemoveOffer:           decode[RemoveOffer],
	TypeAcceptTrade:           decode[AcceptTrade],
	TypeRevokeTradeAcceptance: decode[RevokeTradeAcceptance],
}

func decode[T Command](data []byte) (Command, error) {
	return wire.Decode[T](data)
}

// Marshal encodes a command as {"type": ..., fields...}.
func Marshal(c Command) ([]byte, error) {
	return wire.Marshal(string(c.Type()), c)
}

// Unmarshal decodes a tagged command record.
func Unmarshal(data []byte) (Command, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, err
	}
	dec, ok := decoders[Type(tag)]
	if !ok {
		return nil, fmt.Errorf("unknown command type %q", tag)
	}
	c, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return c, nil
}

// Envelope wraps a command so it can be embedded in larger JSON documents.
type Envelope struct {
	Command Command
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Command == nil {
		return []byte("null"), nil
	}
	return Marshal(e.Command)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		e.Command = nil
		return nil
	}
	c, err := Unmarshal(data)
	if err != nil {
		return err
	}
	e.Command = c
	return nil
}

var _ json.Marshaler = Envelope{}
