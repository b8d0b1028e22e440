package event

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/property-tycoon/internal/game/wire"
)

var decoders = map[Type]func([]byte) (Event, error){
	TypeGameCreated:            decode[GameCreated],
	TypePlayerAdded:            decode[PlayerAdded],
	TypePromotedToGameMaster:   decode[PromotedToGameMaster],
	TypeGameStarted:            decode[GameStarted],
	TypeNewTurnStarted:         decode[NewTurnStarted],
	TypeDiceRolled:             decode[DiceRolled],
	TypeStartMoneyReceived:     decode[StartMoneyReceived],
	TypeLandedOnSafeSpace:      decode[LandedOnSafeSpace],
	TypeLandedOnBuyableSpace:   decode[LandedOnBuyableSpace],
	TypeSpaceBought:            decode[SpaceBought],
	TypeTurnEnded:              decode[TurnEnded],
	TypeBidStarted:             decode[BidStarted],
	TypeBidPlaced:              decode[BidPlaced],
	TypeBidPassed:              decode[BidPassed],
	TypeBidWon:                 decode[BidWon],
	TypeLandedOnHostileSpace:   decode[LandedOnHostileSpace],
	TypeRentDemanded:           decode[RentDemanded],
	TypeRentPaid:               decode[RentPaid],
	TypeOfferAdded:             decode[OfferAdded],
	TypeOfferValueUpdated:      decode[OfferValueUpdated],
	TypeOfferRemoved:           decode[OfferRemoved],
	TypeTradeAccepted:          decode[TradeAccepted],
	TypeTradeAcceptanceRevoked: decode[TradeAcceptanceRevoked],
	TypeTradeCompleted:         decode[TradeCompleted],
}

func decode[T Event](data []byte) (Event, error) {
	return wire.Decode[T](data)
}

// Types lists every event discriminator.
func Types() []Type {
	types := make([]Type, 0, len(decoders))
	for t := range decoders {
		types = append(types, t)
	}
	return types
}

// Marshal encodes an event as {"type": ..., fields...}.
func Marshal(e Event) ([]byte, error) {
	return wire.Marshal(string(e.Type()), e)
}

// Unmarshal decodes a tagged event record.
func Unmarshal(data []byte) (Event, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, err
	}
	dec, ok := decoders[Type(tag)]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", tag)
	}
	e, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return e, nil
}

// List is a slice of events that encodes as a JSON array of tagged records.
type List []Event

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, len(l))
	for i, e := range l {
		raw, err := Marshal(e)
		if err != nil {
			return nil, err
		}
		raws[i] = raw
	}
	return json.Marshal(raws)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, len(raws))
	for i, raw := range raws {
		e, err := Unmarshal(raw)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		out[i] = e
	}
	*l = out
	return nil
}
