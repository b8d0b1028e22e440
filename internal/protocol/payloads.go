package protocol

import (
	"time"

	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CommandPayload 在期望版本上提交命令，执行者以令牌为准
type CommandPayload struct {
	Version int              `json:"version"`
	Command command.Envelope `json:"command"`
}

// SyncPayload 请求从 Skip 开始的事件
type SyncPayload struct {
	Skip int `json:"skip"`
}

// SessionRequest 访客登录
type SessionRequest struct {
	Name string `json:"name"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
	Version    int    `json:"version"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// EventsPayload 一批事件，From 为第一个事件的版本，Version 为当前日志长度
type EventsPayload struct {
	GameID  string     `json:"game_id"`
	From    int        `json:"from"`
	Version int        `json:"version"`
	Events  event.List `json:"events"`
}

// ResultPayload 命令执行结果
type ResultPayload struct {
	Success bool          `json:"success"`
	Version int           `json:"version"`
	Events  event.List    `json:"events,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SessionResponse 访客令牌
type SessionResponse struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GameSummary 游戏列表项
type GameSummary struct {
	ID         string    `json:"id"`
	Players    []string  `json:"players"`
	Started    bool      `json:"started"`
	Version    int       `json:"version"`
	LastActive time.Time `json:"last_active"`
}

// StandingEntry 净资产排名
type StandingEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	NetWorth int    `json:"net_worth"`
}
