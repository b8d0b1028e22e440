package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/state"
	"github.com/palemoky/property-tycoon/internal/ui/common"
)

// 每次加价的幅度
const bidStep = 10

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return tea.Quit
	}
	switch m.screen {
	case ScreenLogin:
		return m.handleLoginKey(msg)
	case ScreenLobby:
		return m.handleLobbyKey(msg)
	default:
		return m.handleGameKey(msg)
	}
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			return m.notify(NotifyError, "昵称不能为空")
		}
		m.busy = true
		return m.login(name)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleLobbyKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.games)-1 {
			m.selected++
		}
	case "r":
		m.busy = true
		return m.listGames()
	case "c":
		m.busy = true
		return m.createGame()
	case "enter":
		if len(m.games) == 0 {
			return m.notify(NotifyInfo, "暂无游戏，按 c 创建")
		}
		return m.join(m.games[m.selected].ID)
	}
	return nil
}

func (m *Model) handleGameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.Close()
		return tea.Quit
	case "esc":
		return m.leave()
	}
	if m.busy {
		return nil
	}
	cmd, ok := action(m.view, m.client.PlayerID(), m.client.PlayerName(), msg.String())
	if !ok {
		return nil
	}
	return m.submit(cmd)
}

// action maps a key to the command it stands for in view v. ok is false
// when the key means nothing in the current phase.
func action(v state.View, me, name, key string) (cmd command.Command, ok bool) {
	self, joined := findPlayer(v, me)

	switch key {
	case "a":
		if v.Started || joined {
			return nil, false
		}
		taken := make([]string, 0, len(v.Players))
		for _, p := range v.Players {
			taken = append(taken, p.Color)
		}
		return command.AddPlayer{Player: me, Name: name, Color: common.FreeColor(taken)}, true

	case "s":
		if v.Started || v.GameMaster != me {
			return nil, false
		}
		return command.StartGame{Player: me}, true

	case "r", " ":
		if v.Phase != "WaitingForDiceRoll" || v.NotMyTurn {
			return nil, false
		}
		return command.RollDice{Player: me}, true

	case "b":
		if v.Pending == nil || v.Pending.Player != me {
			return nil, false
		}
		cash := min(max(self.Money, 0), v.Pending.Price)
		borrowed := v.Pending.Price - cash
		if v.Phase == "BuyingWonBid" {
			return command.BuyWonBid{Player: me, Cash: cash, Borrowed: borrowed}, true
		}
		return command.BuyThisSpace{Player: me, Cash: cash, Borrowed: borrowed}, true

	case "d":
		if v.Phase != "LandedOnNewGround" || v.NotMyTurn {
			return nil, false
		}
		return command.DeclineThisSpace{Player: me}, true

	case "+", "=":
		if v.Auction == nil || !joined {
			return nil, false
		}
		return command.PlaceBid{Player: me, Amount: v.Auction.Bid + bidStep}, true

	case "x":
		if v.Auction == nil || !joined {
			return nil, false
		}
		return command.PassBid{Player: me}, true

	case "m":
		if len(v.RentToDemand) == 0 {
			return nil, false
		}
		return command.DemandRent{Player: me, DemandID: v.RentToDemand[0].ID}, true

	case "p":
		if len(v.RentDemandedForMe) == 0 {
			return nil, false
		}
		return command.PayRent{Player: me, DemandID: v.RentDemandedForMe[0].ID}, true

	case "e":
		if v.Phase != "WaitingForEndTurn" || v.NotMyTurn {
			return nil, false
		}
		return command.EndTurn{Player: me}, true

	case "t":
		if len(v.Trades) == 0 {
			return nil, false
		}
		tr := v.Trades[0]
		if tr.IAccepted {
			return command.RevokeTradeAcceptance{From: me, To: tr.Counterpart}, true
		}
		return command.AcceptTrade{From: me, To: tr.Counterpart}, true
	}
	return nil, false
}

func findPlayer(v state.View, id string) (state.PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return state.PlayerView{}, false
}
