package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/network/client"
	"github.com/palemoky/property-tycoon/internal/protocol"
	"github.com/palemoky/property-tycoon/internal/protocol/codec"
)

// 单次 HTTP 请求超时
const requestTimeout = 10 * time.Second

func (m *Model) login(name string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := c.Login(ctx, name)
		if err != nil {
			return errMsg{Err: err}
		}
		return loggedInMsg{Session: s}
	}
}

func (m *Model) listGames() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		games, err := c.ListGames(ctx)
		if err != nil {
			return errMsg{Err: err}
		}
		return gamesMsg{Games: games}
	}
}

func (m *Model) createGame() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		g, err := c.CreateGame(ctx)
		if err != nil {
			return errMsg{Err: err}
		}
		return joinedMsg{GameID: g.ID}
	}
}

// join 开始跟随游戏：推送流折叠事件，回调经 updates 通道送回 Update
func (m *Model) join(gameID string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tea.Msg, 64)
	post := func(msg tea.Msg) {
		select {
		case updates <- msg:
		case <-ctx.Done():
		}
	}

	f := client.NewFollower(m.client, gameID)
	f.OnUpdate = func(g *state.Game, events []event.Event) {
		post(updateMsg{Game: g, Events: events})
	}
	s, err := client.NewStream(m.client, f, m.encoding)
	if err != nil {
		cancel()
		return func() tea.Msg { return errMsg{Err: err} }
	}
	s.OnReconnecting = func(attempt, maxTries int) {
		post(reconnectingMsg{Attempt: attempt, MaxTries: maxTries})
	}
	s.OnMessage = func(msg *protocol.Message) {
		if msg.Type != protocol.MsgError {
			return
		}
		if e, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			post(errMsg{Err: &apperrors.GameError{Code: e.Code, Message: e.Message}})
		}
	}

	m.gameID, m.follower, m.stream, m.updates, m.done, m.cancel = gameID, f, s, updates, ctx.Done(), cancel
	m.game = state.New()
	m.view = state.View{}
	m.log = nil
	m.screen = ScreenGame

	go func() {
		err := s.Run(ctx)
		post(streamClosedMsg{Err: err})
	}()
	return m.listen()
}

// listen 等待下一条后台消息，离开游戏后返回 nil
func (m *Model) listen() tea.Cmd {
	updates, done := m.updates, m.done
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-updates:
			return streamMsg{Msg: msg}
		case <-done:
			return nil
		}
	}
}

// submit 在本地版本上提交命令，事件由推送流送达
func (m *Model) submit(cmd command.Command) tea.Cmd {
	if m.follower == nil {
		return nil
	}
	m.busy = true
	c, gameID, version := m.client, m.gameID, m.follower.Version()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := c.Submit(ctx, gameID, version, cmd)
		return resultMsg{Result: res, Err: err}
	}
}

func errorText(err error) string {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			return "状态已变化，请稍后重试"
		}
		return gameErr.Message
	}
	return err.Error()
}

func reconnectText(attempt, maxTries int) string {
	return fmt.Sprintf("🔄 正在重连 (%d/%d)...", attempt, maxTries)
}
