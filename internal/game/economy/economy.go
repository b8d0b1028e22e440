// Package economy holds the bank parameters of a game and the start-money
// payout formula.
package economy

import (
	"errors"
	"math"
)

// Params are fixed when a game is created and travel inside GameCreated.
type Params struct {
	// InitialEconomy is the bank balance before any player joins.
	InitialEconomy int `json:"initialEconomy" yaml:"initial_economy"`
	// InitialMoney is paid from the bank to every joining player.
	InitialMoney int `json:"initialMoney" yaml:"initial_money"`
	// FixedStartMoney is the flat part of the payout for passing start.
	FixedStartMoney int `json:"fixedStartMoney" yaml:"fixed_start_money"`
	// ReturnRate is the share of the bank balance returned with each payout.
	ReturnRate float64 `json:"returnRate" yaml:"return_rate"`
	// InterestRate is charged on a player's debt and withheld from the payout.
	InterestRate float64 `json:"interestRate" yaml:"interest_rate"`
}

// Default returns the parameters used when none are configured.
func Default() Params {
	return Params{
		InitialEconomy:  20000,
		InitialMoney:    1500,
		FixedStartMoney: 200,
		ReturnRate:      0.01,
		InterestRate:    0.05,
	}
}

// Validate rejects negative amounts and rates.
func (p Params) Validate() error {
	if p.InitialMoney < 0 || p.FixedStartMoney < 0 {
		return errors.New("economy amounts must not be negative")
	}
	if p.ReturnRate < 0 || p.InterestRate < 0 {
		return errors.New("economy rates must not be negative")
	}
	if math.IsNaN(p.ReturnRate) || math.IsNaN(p.InterestRate) {
		return errors.New("economy rates must be numbers")
	}
	return nil
}

// StartMoney computes the payout for a player passing start:
//
//	floor(fixedStartMoney + ceil(returnRate × bank) − floor(interestRate × debt))
//
// The result is negative when interest exceeds the rest of the payout.
func StartMoney(p Params, bank, debt int) int {
	returned := math.Ceil(p.ReturnRate * float64(bank))
	interest := math.Floor(p.InterestRate * float64(debt))
	return int(math.Floor(float64(p.FixedStartMoney) + returned - interest))
}

// NetWorth is money plus asset value minus debt.
func NetWorth(money, assets, debt int) int {
	return money + assets - debt
}
