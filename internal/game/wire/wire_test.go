package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

func TestMarshal_PrependsType(t *testing.T) {
	t.Parallel()

	data, err := Marshal("BidPlaced", sample{Player: "p1", Amount: 50})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"BidPlaced","player":"p1","amount":50}`, string(data))

	tag, err := Tag(data)
	require.NoError(t, err)
	assert.Equal(t, "BidPlaced", tag)

	got, err := Decode[sample](data)
	require.NoError(t, err)
	assert.Equal(t, sample{Player: "p1", Amount: 50}, got)
}

func TestMarshal_EmptyObject(t *testing.T) {
	t.Parallel()

	data, err := Marshal("Ping", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Ping"}`, string(data))
}

func TestMarshal_RejectsNonObject(t *testing.T) {
	t.Parallel()

	_, err := Marshal("Bad", 42)
	assert.Error(t, err)
}

func TestTag_Missing(t *testing.T) {
	t.Parallel()

	_, err := Tag([]byte(`{"player":"p1"}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = Tag([]byte(`not json`))
	assert.Error(t, err)
}
