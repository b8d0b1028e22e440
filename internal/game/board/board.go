package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/palemoky/property-tycoon/internal/game/wire"
)

// Board is an ordered ring of spaces indexed by id. Index 0 is the start space.
type Board struct {
	spaces []Space
	index  map[string]int
}

// New builds a board and validates it: at least two spaces, unique non-empty
// ids, positive prices and complete rent schedules on every ownable.
func New(spaces []Space) (*Board, error) {
	if len(spaces) < 2 {
		return nil, errors.New("board needs at least two spaces")
	}

	b := &Board{
		spaces: append([]Space(nil), spaces...),
		index:  make(map[string]int, len(spaces)),
	}
	for i, s := range b.spaces {
		id := s.SpaceID()
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("space %d has no id", i)
		}
		if _, dup := b.index[id]; dup {
			return nil, fmt.Errorf("duplicate space id %q", id)
		}
		if err := validateSpace(s); err != nil {
			return nil, fmt.Errorf("space %q: %w", id, err)
		}
		b.index[id] = i
	}
	return b, nil
}

// MustNew is New for catalogs known to be valid at compile time.
func MustNew(spaces []Space) *Board {
	b, err := New(spaces)
	if err != nil {
		panic(err)
	}
	return b
}

func validateSpace(s Space) error {
	switch v := s.(type) {
	case Street:
		if v.InitialPrice <= 0 {
			return errors.New("price must be positive")
		}
		if v.Color == "" {
			return errors.New("street needs a color")
		}
		return v.BuildState.Validate()
	case Station:
		if v.InitialPrice <= 0 {
			return errors.New("price must be positive")
		}
		if len(v.RentBySharedCount) == 0 {
			return errors.New("station needs a rent schedule")
		}
	case Utility:
		if v.InitialPrice <= 0 {
			return errors.New("price must be positive")
		}
		if len(v.RentFactorBySharedCount) == 0 {
			return errors.New("utility needs a rent factor schedule")
		}
	case ActionSpace, FreeParking, Prison:
	default:
		return fmt.Errorf("unknown space variant %T", s)
	}
	return nil
}

// Len returns the number of spaces on the ring.
func (b *Board) Len() int { return len(b.spaces) }

// At returns the space at position i.
func (b *Board) At(i int) Space { return b.spaces[i] }

// Spaces returns a copy of the ring.
func (b *Board) Spaces() []Space { return append([]Space(nil), b.spaces...) }

// Index returns the position of the space with the given id.
func (b *Board) Index(id string) (int, bool) {
	i, ok := b.index[id]
	return i, ok
}

// Space looks a space up by id.
func (b *Board) Space(id string) (Space, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.spaces[i], true
}

// Ownable looks an ownable space up by id.
func (b *Board) Ownable(id string) (Ownable, bool) {
	s, ok := b.Space(id)
	if !ok {
		return nil, false
	}
	o, ok := s.(Ownable)
	return o, ok
}

// ColorGroup returns the ids of every street sharing color.
func (b *Board) ColorGroup(color string) []string {
	var ids []string
	for _, s := range b.spaces {
		if st, ok := s.(Street); ok && st.Color == color {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// SameKind returns the ids of every space of the given kind.
func (b *Board) SameKind(kind Kind) []string {
	var ids []string
	for _, s := range b.spaces {
		if s.Kind() == kind {
			ids = append(ids, s.SpaceID())
		}
	}
	return ids
}

type boardJSON struct {
	Spaces []json.RawMessage `json:"spaces"`
}

// MarshalJSON encodes the ring as {"spaces":[tagged space, ...]}.
func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{Spaces: make([]json.RawMessage, len(b.spaces))}
	for i, s := range b.spaces {
		raw, err := MarshalSpace(s)
		if err != nil {
			return nil, err
		}
		out.Spaces[i] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a ring written by MarshalJSON.
func (b *Board) UnmarshalJSON(data []byte) error {
	var in boardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	spaces := make([]Space, len(in.Spaces))
	for i, raw := range in.Spaces {
		s, err := UnmarshalSpace(raw)
		if err != nil {
			return fmt.Errorf("space %d: %w", i, err)
		}
		spaces[i] = s
	}
	built, err := New(spaces)
	if err != nil {
		return err
	}
	*b = *built
	return nil
}

// MarshalSpace encodes one space as a tagged record.
func MarshalSpace(s Space) ([]byte, error) {
	return wire.Marshal(string(s.Kind()), s)
}

// UnmarshalSpace decodes one tagged space record.
func UnmarshalSpace(data []byte) (Space, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case KindStreet:
		return wire.Decode[Street](data)
	case KindStation:
		return wire.Decode[Station](data)
	case KindUtility:
		return wire.Decode[Utility](data)
	case KindAction:
		return wire.Decode[ActionSpace](data)
	case KindFreeParking:
		return wire.Decode[FreeParking](data)
	case KindPrison:
		return wire.Decode[Prison](data)
	default:
		return nil, fmt.Errorf("unknown space type %q", tag)
	}
}
