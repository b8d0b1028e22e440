// Package client talks to a property-tycoon server: guest login, game
// listing, command submission and following a game's event log.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/protocol"
)

// Client HTTP 客户端，登录后携带令牌
type Client struct {
	BaseURL string

	http *http.Client

	mu         sync.RWMutex
	token      string
	playerID   string
	playerName string
}

// New 创建客户端，baseURL 形如 http://localhost:1780
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		// 长轮询最长 30s，额外留出余量
		http: &http.Client{Timeout: 45 * time.Second},
	}
}

// Login 以访客身份登录
func (c *Client) Login(ctx context.Context, name string) (protocol.SessionResponse, error) {
	var s protocol.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/session", protocol.SessionRequest{Name: name}, &s); err != nil {
		return s, err
	}
	c.mu.Lock()
	c.token, c.playerID, c.playerName = s.Token, s.PlayerID, s.Name
	c.mu.Unlock()
	return s, nil
}

// PlayerID 登录后的玩家 ID
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName 登录后的昵称
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// Token 当前令牌
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListGames 列出服务器上的游戏
func (c *Client) ListGames(ctx context.Context) ([]protocol.GameSummary, error) {
	var games []protocol.GameSummary
	err := c.do(ctx, http.MethodGet, "/api/games", nil, &games)
	return games, err
}

// CreateGame 创建新游戏
func (c *Client) CreateGame(ctx context.Context) (protocol.GameSummary, error) {
	var g protocol.GameSummary
	err := c.do(ctx, http.MethodPost, "/api/games", nil, &g)
	return g, err
}

// Submit sends cmd at version. A rejected command is returned as a
// *apperrors.GameError together with the server's current version.
func (c *Client) Submit(ctx context.Context, gameID string, version int, cmd command.Command) (protocol.ResultPayload, error) {
	path := fmt.Sprintf("/api/games/%s/commands?version=%d", url.PathEscape(gameID), version)
	var res protocol.ResultPayload
	err := c.do(ctx, http.MethodPut, path, command.Envelope{Command: cmd}, &res)
	if err == nil && !res.Success && res.Error != nil {
		err = &apperrors.GameError{Code: res.Error.Code, Message: res.Error.Message}
	}
	return res, err
}

// Events 拉取 skip 之后的事件，没有新事件时服务器最多等待 timeout
func (c *Client) Events(ctx context.Context, gameID string, skip int, timeout time.Duration) (protocol.EventsPayload, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("timeout", strconv.Itoa(int(timeout/time.Second)))
	var page protocol.EventsPayload
	err := c.do(ctx, http.MethodGet, "/api/games/"+url.PathEscape(gameID)+"/events?"+q.Encode(), nil, &page)
	return page, err
}

// Standings 身价排名
func (c *Client) Standings(ctx context.Context, gameID string) ([]protocol.StandingEntry, error) {
	var out []protocol.StandingEntry
	err := c.do(ctx, http.MethodGet, "/api/games/"+url.PathEscape(gameID)+"/standings", nil, &out)
	return out, err
}

// do sends a JSON request and decodes the reply into out. Error replies
// that carry a ResultPayload are decoded too; others become GameErrors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if res, ok := out.(*protocol.ResultPayload); ok {
			if json.Unmarshal(data, res) == nil && res.Error != nil {
				return nil
			}
		}
		var e protocol.ErrorPayload
		if json.Unmarshal(data, &e) == nil && e.Code != 0 {
			return &apperrors.GameError{Code: e.Code, Message: e.Message}
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return json.Unmarshal(data, out)
}
