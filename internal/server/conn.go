package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/logger"
	"github.com/palemoky/property-tycoon/internal/protocol"
	"github.com/palemoky/property-tycoon/internal/protocol/codec"
	"github.com/palemoky/property-tycoon/internal/server/identity"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 8192

	// 超限次数达到该值后断开
	maxWarnings = 5
)

// Conn 一个玩家对一局游戏的 WebSocket 连接
type Conn struct {
	ID     string
	Player identity.Player
	GameID string
	IP     string

	server *Server
	conn   *websocket.Conn
	codec  codec.Codec
	send   chan []byte
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// handleWebSocket GET /ws?game=&token=&encoding=json|proto&skip=
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if s.IsMaintenanceMode() {
		log.Printf("🔧 维护模式，拒绝新连接: %s", clientIP)
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制，连接结束时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	if !s.rateLimiter.Allow(clientIP) {
		release()
		log.Printf("🚫 IP %s 请求过于频繁", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	q := r.URL.Query()
	player, err := s.identity.Verify(q.Get("token"))
	if err != nil {
		release()
		writeError(w, apperrors.ErrUnauthorized)
		return
	}
	enc, err := codec.ForName(q.Get("encoding"))
	if err != nil {
		release()
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	skip, err := intParam(q.Get("skip"), 0)
	if err != nil || skip < 0 {
		release()
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	gameID := q.Get("game")
	g, err := s.games.GetGame(r.Context(), gameID)
	if err != nil {
		release()
		writeError(w, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ID:     uuid.NewString(),
		Player: player,
		GameID: gameID,
		IP:     clientIP,
		server: s,
		conn:   ws,
		codec:  enc,
		send:   make(chan []byte, 256),
		cancel: cancel,
	}
	s.registerClient(c)

	c.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		GameID:     gameID,
		Version:    g.Version(),
	}))
	log.Printf("✅ 玩家 %s (%s) 已连接游戏 %s [%s]", player.Name, player.ID, gameID, enc.Name())

	go c.writePump()
	go c.follow(ctx, skip)
	go func() {
		defer release()
		c.readPump()
	}()
}

// readPump 读取客户端消息直到连接断开
func (c *Conn) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.server.messageLimiter.RemoveClient(c.ID)
		c.server.unregisterClient(c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取错误: %v", err)
			}
			return
		}

		allowed, warnings := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if warnings > maxWarnings {
				log.Printf("🚫 玩家 %s 因多次超速被断开连接", c.Player.Name)
				return
			}
			continue
		}

		msg, err := c.codec.Decode(data)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}
		c.handle(msg)
		codec.PutMessage(msg)
	}
}

func (c *Conn) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		ping, err := codec.ParsePayload[protocol.PingPayload](msg)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
			ClientTimestamp: ping.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		}))

	case protocol.MsgCommand:
		req, err := codec.ParsePayload[protocol.CommandPayload](msg)
		if err != nil || req.Command.Command == nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}
		res, err := c.server.games.Submit(context.Background(), c.GameID, stamp(req.Command.Command, c.Player), req.Version)
		c.SendMessage(codec.MustNewMessage(protocol.MsgResult, result(res, err)))

	case protocol.MsgSync:
		req, err := codec.ParsePayload[protocol.SyncPayload](msg)
		if err != nil || req.Skip < 0 {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}
		version, events, err := c.server.games.Events(context.Background(), c.GameID, req.Skip, c.server.config.Game.PageLimit, 0)
		if err != nil {
			c.SendMessage(codec.MustNewMessage(protocol.MsgError, errorPayload(err)))
			return
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgEvents, protocol.EventsPayload{
			GameID: c.GameID, From: req.Skip, Version: version, Events: events,
		}))

	default:
		c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeInvalidMsg, "未知消息类型: "+string(msg.Type)))
	}
}

// follow pushes every committed event from skip onwards until ctx ends.
func (c *Conn) follow(ctx context.Context, skip int) {
	wait := max(c.server.config.Game.LongPollMaxDuration(), time.Second)
	for {
		version, events, err := c.server.games.Events(ctx, c.GameID, skip, c.server.config.Game.PageLimit, wait)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("推送事件失败 %s: %v", c.GameID, err)
				c.Close()
			}
			return
		}
		if len(events) == 0 {
			continue
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgEvents, protocol.EventsPayload{
			GameID: c.GameID, From: skip, Version: version, Events: events,
		}))
		skip += len(events)
	}
}

// writePump 向 WebSocket 写入消息并定期 ping
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frame := websocket.TextMessage
	if c.codec.Binary() {
		frame = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frame, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 编码后放入发送队列，队列满时断开
func (c *Conn) SendMessage(msg *protocol.Message) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("连接 %s 发送缓冲区已满", c.ID)
		go c.Close()
	}
}

// Close 停止推送并关闭发送队列
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.cancel()
		close(c.send)
	}
}

