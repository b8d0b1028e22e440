package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/property-tycoon/internal/config"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/lobby"
	"github.com/palemoky/property-tycoon/internal/protocol"
	"github.com/palemoky/property-tycoon/internal/protocol/codec"
	"github.com/palemoky/property-tycoon/internal/server/identity"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.RateLimit.MaxPerSecond = 1000
	cfg.Security.RateLimit.MaxPerMinute = 10000
	cfg.Game.LongPollMax = 2

	issuer, err := identity.NewIssuer(cfg.Security.JWTSecret, time.Hour)
	require.NoError(t, err)
	games := lobby.NewManager(lobby.Options{
		NewDice: func() engine.Dice { return engine.NewFixedDice([2]int{1, 2}) },
		MaxWait: cfg.Game.LongPollMaxDuration(),
	})

	ts := httptest.NewServer(New(Deps{Config: cfg, Games: games, Identity: issuer}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func login(t *testing.T, ts *httptest.Server, name string) protocol.SessionResponse {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/api/session", "", protocol.SessionRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var s protocol.SessionResponse
	require.NoError(t, json.Unmarshal(body, &s))
	return s
}

func createGame(t *testing.T, ts *httptest.Server, token string) string {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/api/games", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var g protocol.GameSummary
	require.NoError(t, json.Unmarshal(body, &g))
	return g.ID
}

func send(t *testing.T, ts *httptest.Server, gameID, token string, version int, cmd command.Command) (int, protocol.ResultPayload) {
	t.Helper()
	url := fmt.Sprintf("%s/api/games/%s/commands?version=%d", ts.URL, gameID, version)
	resp, body := do(t, http.MethodPut, url, token, command.Envelope{Command: cmd})
	var res protocol.ResultPayload
	require.NoError(t, json.Unmarshal(body, &res), string(body))
	return resp.StatusCode, res
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestSession_RequiresName(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/session", "", protocol.SessionRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/games", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCommands_OverHTTP(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ann := login(t, ts, "Ann")
	bob := login(t, ts, "Bob")
	id := createGame(t, ts, ann.Token)

	// The actor comes from the token, not the body.
	status, res := send(t, ts, id, ann.Token, 0, command.AddPlayer{Player: "someone-else", Color: "red"})
	require.Equal(t, http.StatusOK, status, "%+v", res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Version)
	assert.Equal(t, event.PlayerAdded{Player: ann.PlayerID, Name: "Ann", Color: "red"}, res.Events[1])

	status, res = send(t, ts, id, bob.Token, 0, command.AddPlayer{Color: "blue"})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, res.Success)
	assert.Equal(t, protocol.ErrCodeVersionConflict, res.Error.Code)
	assert.Equal(t, 3, res.Version)

	status, res = send(t, ts, id, bob.Token, 3, command.StartGame{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, protocol.ErrCodeIllegalCommand, res.Error.Code)

	status, _ = send(t, ts, id, bob.Token, 3, command.AddPlayer{Color: "blue"})
	require.Equal(t, http.StatusOK, status)
	status, _ = send(t, ts, id, ann.Token, 4, command.StartGame{})
	require.Equal(t, http.StatusOK, status)
	status, res = send(t, ts, id, ann.Token, 6, command.RollDice{})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, event.DiceRolled{Player: ann.PlayerID, Die1: 1, Die2: 2}, res.Events[0])

	// State per viewer.
	resp, body := do(t, http.MethodGet, ts.URL+"/api/games/"+id+"/state?player="+bob.PlayerID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view state.View
	require.NoError(t, json.Unmarshal(body, &view))
	assert.True(t, view.NotMyTurn)
	assert.Len(t, view.Players, 2)

	// Standings.
	resp, body = do(t, http.MethodGet, ts.URL+"/api/games/"+id+"/standings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var standings []protocol.StandingEntry
	require.NoError(t, json.Unmarshal(body, &standings))
	assert.Len(t, standings, 2)

	// Listing.
	resp, body = do(t, http.MethodGet, ts.URL+"/api/games", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var games []protocol.GameSummary
	require.NoError(t, json.Unmarshal(body, &games))
	require.Len(t, games, 1)
	assert.Equal(t, []string{"Ann", "Bob"}, games[0].Players)
	assert.True(t, games[0].Started)
}

func TestCommands_BadRequests(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ann := login(t, ts, "Ann")
	id := createGame(t, ts, ann.Token)

	resp, _ := do(t, http.MethodPut, ts.URL+"/api/games/"+id+"/commands?version=x", ann.Token, command.Envelope{Command: command.StartGame{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/games/"+id+"/commands?version=0", ann.Token, map[string]any{"type": "Teleport"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, res := send(t, ts, "missing", ann.Token, 0, command.StartGame{})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, protocol.ErrCodeGameNotFound, res.Error.Code)

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/games/"+id+"/commands?version=0", "", command.Envelope{Command: command.StartGame{}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEvents_LongPoll(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ann := login(t, ts, "Ann")
	id := createGame(t, ts, ann.Token)
	_, _ = send(t, ts, id, ann.Token, 0, command.AddPlayer{Color: "red"})

	resp, body := do(t, http.MethodGet, ts.URL+"/api/games/"+id+"/events?skip=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page protocol.EventsPayload
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 1, page.From)
	assert.Equal(t, 3, page.Version)
	assert.Equal(t, event.List{event.PlayerAdded{Player: ann.PlayerID, Name: "Ann", Color: "red"}}, page.Events)

	started := time.Now()
	resp, body = do(t, http.MethodGet, ts.URL+"/api/games/"+id+"/events?skip=3&timeout=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Events)
	assert.GreaterOrEqual(t, time.Since(started), 900*time.Millisecond)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/games/"+id+"/events?skip=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// wsClient keeps messages that arrive ahead of the one a test waits for.
type wsClient struct {
	ws      *websocket.Conn
	codec   codec.Codec
	pending []*protocol.Message
}

func dial(t *testing.T, ts *httptest.Server, gameID, token, encoding string) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game=" + gameID + "&token=" + token + "&encoding=" + encoding
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = ws.Close() })

	c, err := codec.ForName(encoding)
	require.NoError(t, err)
	return &wsClient{ws: ws, codec: c}
}

func (wc *wsClient) read(t *testing.T, want protocol.MessageType) *protocol.Message {
	t.Helper()
	for i, msg := range wc.pending {
		if msg.Type == want {
			wc.pending = append(wc.pending[:i], wc.pending[i+1:]...)
			return msg
		}
	}

	require.NoError(t, wc.ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		frame, data, err := wc.ws.ReadMessage()
		require.NoError(t, err)
		if wc.codec.Binary() {
			assert.Equal(t, websocket.BinaryMessage, frame)
		}
		msg, err := wc.codec.Decode(data)
		require.NoError(t, err)
		if msg.Type == want {
			return msg
		}
		wc.pending = append(wc.pending, msg)
	}
}

func (wc *wsClient) write(t *testing.T, msg *protocol.Message) {
	t.Helper()
	data, err := wc.codec.Encode(msg)
	require.NoError(t, err)
	frame := websocket.TextMessage
	if wc.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	require.NoError(t, wc.ws.WriteMessage(frame, data))
}

func TestWebSocket_CommandsAndPush(t *testing.T) {
	t.Parallel()

	for _, encoding := range []string{"json", "proto"} {
		t.Run(encoding, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			ann := login(t, ts, "Ann")
			id := createGame(t, ts, ann.Token)

			wc := dial(t, ts, id, ann.Token, encoding)
			connected, err := codec.ParsePayload[protocol.ConnectedPayload](wc.read(t, protocol.MsgConnected))
			require.NoError(t, err)
			assert.Equal(t, ann.PlayerID, connected.PlayerID)
			assert.Zero(t, connected.Version)

			wc.write(t, codec.MustNewMessage(protocol.MsgCommand, protocol.CommandPayload{
				Version: 0,
				Command: command.Envelope{Command: command.AddPlayer{Color: "red"}},
			}))
			res, err := codec.ParsePayload[protocol.ResultPayload](wc.read(t, protocol.MsgResult))
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, 3, res.Version)

			pushed, err := codec.ParsePayload[protocol.EventsPayload](wc.read(t, protocol.MsgEvents))
			require.NoError(t, err)
			assert.Zero(t, pushed.From)
			assert.Len(t, pushed.Events, 3)

			wc.write(t, codec.MustNewMessage(protocol.MsgSync, protocol.SyncPayload{Skip: 2}))
			synced, err := codec.ParsePayload[protocol.EventsPayload](wc.read(t, protocol.MsgEvents))
			require.NoError(t, err)
			assert.Equal(t, event.List{event.PromotedToGameMaster{Player: ann.PlayerID}}, synced.Events)

			wc.write(t, codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 42}))
			pong, err := codec.ParsePayload[protocol.PongPayload](wc.read(t, protocol.MsgPong))
			require.NoError(t, err)
			assert.Equal(t, int64(42), pong.ClientTimestamp)
		})
	}
}

func TestWebSocket_Rejects(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ann := login(t, ts, "Ann")
	id := createGame(t, ts, ann.Token)
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game="

	_, resp, err := websocket.DefaultDialer.Dial(base+id+"&token=bogus", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"missing&token="+ann.Token, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+id+"&token="+ann.Token+"&encoding=xml", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
