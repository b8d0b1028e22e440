package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal_Trade(t *testing.T) {
	t.Parallel()

	c, err := Unmarshal([]byte(`{"type":"AcceptTrade","from":"p1","to":"p2","cashDelta":100,"debtDelta":-20}`))
	require.NoError(t, err)
	assert.Equal(t, AcceptTrade{From: "p1", To: "p2", CashDelta: 100, DebtDelta: -20}, c)
	assert.Equal(t, "p1", c.Actor())
}

func TestWithActor_OverridesClaimedActor(t *testing.T) {
	t.Parallel()

	var c Command = PlaceBid{Player: "mallory", Amount: 50}
	c = c.WithActor("p2")
	assert.Equal(t, PlaceBid{Player: "p2", Amount: 50}, c)

	c = RemoveOffer{From: "mallory", To: "p1", Ownable: "baltic"}.WithActor("p2")
	assert.Equal(t, "p2", c.Actor())
	assert.Equal(t, "p1", c.(RemoveOffer).To)
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	doc := struct {
		Command Envelope `json:"command"`
	}{Command: Envelope{Command: BuyThisSpace{Player: "p1", Cash: 50, Borrowed: 150}}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":{"type":"BuyThisSpace","player":"p1","cash":50,"borrowed":150}}`, string(data))

	var back struct {
		Command Envelope `json:"command"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc.Command.Command, back.Command.Command)
}

func TestUnmarshal_Unknown(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"type":"BuildHotel","player":"p1"}`))
	assert.Error(t, err)
}
