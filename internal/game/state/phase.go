package state

// Phase is the turn state machine's current state. The variant set is closed;
// every transition is an exhaustive type switch over it.
//
//sumtype:decl
type Phase interface {
	Name() string
	isPhase()
}

// WaitingForStart holds until GameStarted.
type WaitingForStart struct{}

// WaitingForTurn is the gap between TurnEnded and the next NewTurnStarted.
type WaitingForTurn struct{}

// WaitingForDiceRoll waits for the active player to roll.
type WaitingForDiceRoll struct {
	Player string
}

// LandedOnNewGround waits for the active player to buy or decline Ground.
type LandedOnNewGround struct {
	Player string
	Ground string
}

// Bidding is an auction for Ground. Leader holds the highest Bid; it starts
// as DefaultWinner at zero. Resume is the phase the turn returns to once the
// won bid is bought.
type Bidding struct {
	Ground        string
	DefaultWinner string
	Leader        string
	Bid           int
	Participants  []string
	Passed        []string
	Resume        Phase
}

// BuyingWonBid waits for the auction winner to pay Bid for Ground.
type BuyingWonBid struct {
	Player string
	Ground string
	Bid    int
	Resume Phase
}

// WaitingForEndTurn waits for the active player to end the turn.
type WaitingForEndTurn struct {
	Player string
}

func (WaitingForStart) Name() string    { return "WaitingForStart" }
func (WaitingForTurn) Name() string     { return "WaitingForTurn" }
func (WaitingForDiceRoll) Name() string { return "WaitingForDiceRoll" }
func (LandedOnNewGround) Name() string  { return "LandedOnNewGround" }
func (Bidding) Name() string            { return "Bidding" }
func (BuyingWonBid) Name() string       { return "BuyingWonBid" }
func (WaitingForEndTurn) Name() string  { return "WaitingForEndTurn" }

func (WaitingForStart) isPhase()    {}
func (WaitingForTurn) isPhase()     {}
func (WaitingForDiceRoll) isPhase() {}
func (LandedOnNewGround) isPhase()  {}
func (Bidding) isPhase()            {}
func (BuyingWonBid) isPhase()       {}
func (WaitingForEndTurn) isPhase()  {}

// ActivePlayer returns whose turn the phase belongs to, or "" outside a turn.
// During an auction the turn still belongs to the player who declined.
func ActivePlayer(p Phase) string {
	switch v := p.(type) {
	case WaitingForStart, WaitingForTurn:
		return ""
	case WaitingForDiceRoll:
		return v.Player
	case LandedOnNewGround:
		return v.Player
	case Bidding:
		return ActivePlayer(v.Resume)
	case BuyingWonBid:
		return ActivePlayer(v.Resume)
	case WaitingForEndTurn:
		return v.Player
	default:
		panic(unknownPhase(p))
	}
}

// Actor returns the single player the phase is waiting on, or "" when the
// phase accepts input from anyone (auction) or from no one.
func Actor(p Phase) string {
	switch v := p.(type) {
	case WaitingForStart, WaitingForTurn, Bidding:
		return ""
	case WaitingForDiceRoll:
		return v.Player
	case LandedOnNewGround:
		return v.Player
	case BuyingWonBid:
		return v.Player
	case WaitingForEndTurn:
		return v.Player
	default:
		panic(unknownPhase(p))
	}
}
