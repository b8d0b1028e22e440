// Package board describes the static board catalog: the ring of spaces a game
// is played on, their prices and their rent schedules. A catalog is immutable
// once a game has been created from it.
package board

import "fmt"

// Kind is the wire discriminator of a space variant.
type Kind string

const (
	KindStreet      Kind = "Street"
	KindStation     Kind = "Station"
	KindUtility     Kind = "Utility"
	KindAction      Kind = "ActionSpace"
	KindFreeParking Kind = "FreeParking"
	KindPrison      Kind = "Prison"
)

// Space is one square of the board. The variant set is closed.
//
//sumtype:decl
type Space interface {
	SpaceID() string
	SpaceText() string
	Kind() Kind
	isSpace()
}

// Ownable is a space that can be bought: Street, Station or Utility.
type Ownable interface {
	Space
	Price() int
}

// BuildState is the development level of a street. The zero value is unbuilt.
type BuildState struct {
	Houses int  `json:"houses,omitempty" yaml:"houses,omitempty"`
	Hotel  bool `json:"hotel,omitempty" yaml:"hotel,omitempty"`
}

// Unbuilt reports whether no house or hotel stands on the street.
func (b BuildState) Unbuilt() bool { return b.Houses == 0 && !b.Hotel }

// Validate checks Houses is within 0..4 and a hotel has no houses next to it.
func (b BuildState) Validate() error {
	if b.Houses < 0 || b.Houses > MaxHouses {
		return fmt.Errorf("houses must be within 0..%d, got %d", MaxHouses, b.Houses)
	}
	if b.Hotel && b.Houses != 0 {
		return fmt.Errorf("a hotel replaces houses")
	}
	return nil
}

// MaxHouses is the number of houses a street holds before a hotel.
const MaxHouses = 4

// Street is a colored property.
type Street struct {
	ID                string         `json:"id" yaml:"id"`
	Text              string         `json:"text" yaml:"text"`
	Color             string         `json:"color" yaml:"color"`
	InitialPrice      int            `json:"initialPrice" yaml:"initialPrice"`
	Rent              int            `json:"rent" yaml:"rent"`
	RentPerHouseCount [MaxHouses]int `json:"rentPerHouseCount" yaml:"rentPerHouseCount"`
	RentHotel         int            `json:"rentHotel" yaml:"rentHotel"`
	PriceHouse        int            `json:"priceHouse" yaml:"priceHouse"`
	PriceHotel        int            `json:"priceHotel" yaml:"priceHotel"`
	BuildState        BuildState     `json:"buildState" yaml:"buildState,omitempty"`
}

// Station is a railway station; rent depends on how many stations the owner holds.
type Station struct {
	ID                string `json:"id" yaml:"id"`
	Text              string `json:"text" yaml:"text"`
	InitialPrice      int    `json:"initialPrice" yaml:"initialPrice"`
	RentBySharedCount []int  `json:"rentBySharedCount" yaml:"rentBySharedCount"`
}

// Utility charges a factor of the dice total; the factor depends on how many
// utilities the owner holds.
type Utility struct {
	ID                      string `json:"id" yaml:"id"`
	Text                    string `json:"text" yaml:"text"`
	InitialPrice            int    `json:"initialPrice" yaml:"initialPrice"`
	RentFactorBySharedCount []int  `json:"rentFactorBySharedCount" yaml:"rentFactorBySharedCount"`
}

// ActionSpace is a non-ownable square (start, chance, taxes ...). Landing on
// it has no effect on the game state.
type ActionSpace struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// FreeParking is a non-ownable resting square.
type FreeParking struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Prison is a non-ownable square; visiting is safe.
type Prison struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

func (s Street) SpaceID() string      { return s.ID }
func (s Station) SpaceID() string     { return s.ID }
func (s Utility) SpaceID() string     { return s.ID }
func (s ActionSpace) SpaceID() string { return s.ID }
func (s FreeParking) SpaceID() string { return s.ID }
func (s Prison) SpaceID() string      { return s.ID }

func (s Street) SpaceText() string      { return s.Text }
func (s Station) SpaceText() string     { return s.Text }
func (s Utility) SpaceText() string     { return s.Text }
func (s ActionSpace) SpaceText() string { return s.Text }
func (s FreeParking) SpaceText() string { return s.Text }
func (s Prison) SpaceText() string      { return s.Text }

func (Street) Kind() Kind      { return KindStreet }
func (Station) Kind() Kind     { return KindStation }
func (Utility) Kind() Kind     { return KindUtility }
func (ActionSpace) Kind() Kind { return KindAction }
func (FreeParking) Kind() Kind { return KindFreeParking }
func (Prison) Kind() Kind      { return KindPrison }

func (Street) isSpace()      {}
func (Station) isSpace()     {}
func (Utility) isSpace()     {}
func (ActionSpace) isSpace() {}
func (FreeParking) isSpace() {}
func (Prison) isSpace()      {}

func (s Street) Price() int  { return s.InitialPrice }
func (s Station) Price() int { return s.InitialPrice }
func (s Utility) Price() int { return s.InitialPrice }
