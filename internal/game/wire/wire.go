// Package wire implements the flat tagged-record shape shared by events,
// commands and board spaces: a JSON object whose "type" field names the variant
// and whose remaining fields are the variant's own.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TypeField is the discriminator key.
const TypeField = "type"

// ErrMissingType is returned when a record has no discriminator.
var ErrMissingType = errors.New("wire: record has no type")

// Marshal encodes v as a JSON object and prepends the discriminator.
// v must encode to a JSON object without its own "type" field.
func Marshal(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("wire: %s does not encode to an object", tag)
	}

	head, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(head) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(head)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Tag reads the discriminator of a tagged record.
func Tag(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Type == "" {
		return "", ErrMissingType
	}
	return head.Type, nil
}

// Decode unmarshals a tagged record into a fresh T. The discriminator is
// ignored because T's fields never include it.
func Decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
