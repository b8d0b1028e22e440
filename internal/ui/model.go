// Package ui is the terminal client built on bubbletea.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/network/client"
	"github.com/palemoky/property-tycoon/internal/protocol"
)

// Screen 当前界面
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenLobby
	ScreenGame
)

// 日志最多保留的行数
const maxLogLines = 200

// NotificationType 通知类型
type NotificationType int

const (
	NotifyError        NotificationType = iota // 错误信息（临时）
	NotifyInfo                                 // 普通提示（临时）
	NotifyReconnecting                         // 重连中（持久）
)

// Notification 界面底部的系统通知
type Notification struct {
	Message string
	Type    NotificationType
}

// --- Tea Messages ---

// streamMsg 来自游戏后台通道的消息，处理后继续监听
type streamMsg struct {
	Msg tea.Msg
}

type loggedInMsg struct {
	Session protocol.SessionResponse
}

type gamesMsg struct {
	Games []protocol.GameSummary
}

type joinedMsg struct {
	GameID string
}

// updateMsg 本地状态折叠了新事件
type updateMsg struct {
	Game   *state.Game
	Events []event.Event
}

type resultMsg struct {
	Result protocol.ResultPayload
	Err    error
}

type errMsg struct {
	Err error
}

type reconnectingMsg struct {
	Attempt  int
	MaxTries int
}

type streamClosedMsg struct {
	Err error
}

type clearNotificationMsg struct {
	Seq int
}

// Model 客户端主 model
type Model struct {
	client   *client.Client
	encoding string

	screen Screen
	input  textinput.Model
	wait   spinner.Model
	busy   bool

	games    []protocol.GameSummary
	selected int

	gameID   string
	follower *client.Follower
	stream   *client.Stream
	cancel   context.CancelFunc
	updates  chan tea.Msg
	done     <-chan struct{}

	game *state.Game
	view state.View
	log  []string

	notification *Notification
	noticeSeq    int

	width  int
	height int
}

// NewModel 创建客户端 model，encoding 为推送流编码
func NewModel(c *client.Client, encoding string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入昵称后回车"
	ti.CharLimit = 20
	ti.Width = 30
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		client:   c,
		encoding: encoding,
		screen:   ScreenLogin,
		input:    ti,
		wait:     sp,
		game:     state.New(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.wait.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case streamMsg:
		_, cmd := m.Update(msg.Msg)
		return m, tea.Batch(cmd, m.listen())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.wait, cmd = m.wait.Update(msg)
		return m, cmd

	case loggedInMsg:
		m.busy = false
		m.screen = ScreenLobby
		m.input.Blur()
		return m, m.listGames()

	case gamesMsg:
		m.busy = false
		m.games = msg.Games
		m.selected = min(m.selected, max(len(m.games)-1, 0))
		return m, nil

	case joinedMsg:
		m.busy = false
		return m, m.join(msg.GameID)

	case updateMsg:
		m.applyUpdate(msg)
		return m, nil

	case resultMsg:
		m.busy = false
		if msg.Err != nil {
			return m, m.notify(NotifyError, errorText(msg.Err))
		}
		return m, nil

	case reconnectingMsg:
		m.notification = &Notification{
			Message: reconnectText(msg.Attempt, msg.MaxTries),
			Type:    NotifyReconnecting,
		}
		return m, nil

	case streamClosedMsg:
		if msg.Err != nil {
			return m, m.notify(NotifyError, "连接已断开: "+msg.Err.Error())
		}
		return m, nil

	case errMsg:
		m.busy = false
		return m, m.notify(NotifyError, errorText(msg.Err))

	case clearNotificationMsg:
		if msg.Seq == m.noticeSeq {
			m.notification = nil
		}
		return m, nil
	}

	if m.screen == ScreenLogin {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyUpdate 刷新视图并追加事件日志
func (m *Model) applyUpdate(msg updateMsg) {
	m.game = msg.Game
	m.view = state.Render(msg.Game, m.client.PlayerID())
	for _, e := range msg.Events {
		m.log = append(m.log, describe(msg.Game, e))
	}
	if over := len(m.log) - maxLogLines; over > 0 {
		m.log = m.log[over:]
	}
	if m.notification != nil && m.notification.Type == NotifyReconnecting {
		m.notification = nil
	}
}

// notify 显示临时通知，3 秒后自动清除
func (m *Model) notify(t NotificationType, text string) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notification = &Notification{Message: text, Type: t}
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearNotificationMsg{Seq: seq}
	})
}

// leave 断开当前游戏并回到大厅
func (m *Model) leave() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.follower, m.stream, m.updates, m.done = nil, nil, nil, nil
	m.gameID = ""
	m.game = state.New()
	m.view = state.View{}
	m.log = nil
	m.screen = ScreenLobby
	return m.listGames()
}

// Close 退出前断开连接
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}
