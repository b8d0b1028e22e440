package board

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout of a board catalog:
//
//	spaces:
//	  - type: ActionSpace
//	    id: start
//	    text: Start
//	  - type: Street
//	    id: baltic
//	    ...
type catalogFile struct {
	Spaces []yaml.Node `yaml:"spaces"`
}

// Load parses a YAML board catalog.
func Load(data []byte) (*Board, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse board catalog: %w", err)
	}
	if len(file.Spaces) == 0 {
		return nil, errors.New("board catalog has no spaces")
	}

	spaces := make([]Space, len(file.Spaces))
	for i := range file.Spaces {
		s, err := decodeYAMLSpace(&file.Spaces[i])
		if err != nil {
			return nil, fmt.Errorf("space %d: %w", i, err)
		}
		spaces[i] = s
	}
	return New(spaces)
}

// LoadFile reads a YAML board catalog from disk.
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

func decodeYAMLSpace(node *yaml.Node) (Space, error) {
	var head struct {
		Type Kind `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}

	switch head.Type {
	case KindStreet:
		return decodeNode[Street](node)
	case KindStation:
		return decodeNode[Station](node)
	case KindUtility:
		return decodeNode[Utility](node)
	case KindAction:
		return decodeNode[ActionSpace](node)
	case KindFreeParking:
		return decodeNode[FreeParking](node)
	case KindPrison:
		return decodeNode[Prison](node)
	case "":
		return nil, errors.New("space has no type")
	default:
		return nil, fmt.Errorf("unknown space type %q", head.Type)
	}
}

func decodeNode[T any](node *yaml.Node) (T, error) {
	var v T
	err := node.Decode(&v)
	return v, err
}
