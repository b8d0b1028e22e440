package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/logger"
	"github.com/palemoky/property-tycoon/internal/protocol"
	"github.com/palemoky/property-tycoon/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 最大连续重连次数
	maxReconnectAttempts = 5
)

// ErrNotConnected 连接尚未建立
var ErrNotConnected = errors.New("stream not connected")

// Stream receives pushed events over a WebSocket and folds them into a
// Follower. It reconnects from the follower's version after a drop.
type Stream struct {
	client   *Client
	follower *Follower
	codec    codec.Codec

	conn    *websocket.Conn
	writeMu sync.Mutex

	// 网络延迟（毫秒）
	latency atomic.Int64

	// 回调
	OnMessage      func(*protocol.Message) // 命令结果与错误
	OnReconnecting func(attempt, max int)
}

// NewStream 创建推送流，encoding 为 json 或 proto
func NewStream(c *Client, f *Follower, encoding string) (*Stream, error) {
	enc, err := codec.ForName(encoding)
	if err != nil {
		return nil, err
	}
	return &Stream{client: c, follower: f, codec: enc}, nil
}

// Latency 最近一次 ping 往返（毫秒）
func (s *Stream) Latency() int64 {
	return s.latency.Load()
}

func (s *Stream) url() (string, error) {
	u, err := url.Parse(s.client.BaseURL)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"
	q := url.Values{}
	q.Set("game", s.follower.GameID)
	q.Set("token", s.client.Token())
	q.Set("encoding", s.codec.Name())
	q.Set("skip", strconv.Itoa(s.follower.Version()))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run connects and reads until ctx ends. After a drop it retries with
// exponential backoff and gives up after maxReconnectAttempts failures in
// a row.
func (s *Stream) Run(ctx context.Context) error {
	attempts := 0
	backoff := retryInterval
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			attempts, backoff = 0, retryInterval
		}
		attempts++
		if attempts > maxReconnectAttempts {
			return fmt.Errorf("websocket: %w", err)
		}
		logger.LogError("连接中断 (%d/%d): %v", attempts, maxReconnectAttempts, err)
		if s.OnReconnecting != nil {
			s.OnReconnecting(attempts, maxReconnectAttempts)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryInterval)
	}
}

// session runs one connection. connected reports whether the handshake
// succeeded.
func (s *Stream) session(ctx context.Context) (connected bool, err error) {
	target, err := s.url()
	if err != nil {
		return false, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()

	s.writeMu.Lock()
	s.conn = ws
	s.writeMu.Unlock()

	done := make(chan struct{})
	defer func() {
		close(done)
		s.writeMu.Lock()
		s.conn = nil
		s.writeMu.Unlock()
		_ = ws.Close()
	}()
	go s.keepAlive(ctx, ws, done)

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return true, err
		}
		msg, err := s.codec.Decode(data)
		if err != nil {
			logger.LogError("消息解析错误: %v", err)
			continue
		}
		s.handle(msg)
	}
}

// keepAlive pings the server and closes ws when ctx ends.
func (s *Stream) keepAlive(ctx context.Context, ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = ws.Close()
			return
		case <-ticker.C:
			s.writeMu.Lock()
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := ws.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Stream) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgEvents:
		page, err := codec.ParsePayload[protocol.EventsPayload](msg)
		if err != nil {
			logger.LogError("事件解析错误: %v", err)
			return
		}
		if err := s.follower.ApplyPayload(*page); err != nil {
			logger.LogError("折叠事件失败: %v", err)
			if errors.Is(err, ErrGap) {
				_ = s.send(codec.MustNewMessage(protocol.MsgSync, protocol.SyncPayload{Skip: s.follower.Version()}))
			}
		}
		return
	case protocol.MsgPong:
		if pong, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			s.latency.Store(time.Now().UnixMilli() - pong.ClientTimestamp)
		}
	}
	if s.OnMessage != nil {
		s.OnMessage(msg)
	}
}

// Submit sends cmd at version; the result arrives through OnMessage.
func (s *Stream) Submit(version int, cmd command.Command) error {
	return s.send(codec.MustNewMessage(protocol.MsgCommand, protocol.CommandPayload{
		Version: version,
		Command: command.Envelope{Command: cmd},
	}))
}

// Ping 发送心跳，pong 到达后更新延迟
func (s *Stream) Ping() error {
	return s.send(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: time.Now().UnixMilli()}))
}

func (s *Stream) send(msg *protocol.Message) error {
	data, err := s.codec.Encode(msg)
	if err != nil {
		return err
	}
	frame := websocket.TextMessage
	if s.codec.Binary() {
		frame = websocket.BinaryMessage
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(frame, data)
}
