package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/property-tycoon/internal/ui/common"
)

// 日志区显示的行数
const logRows = 12

func (m *Model) View() string {
	var body string
	switch m.screen {
	case ScreenLogin:
		body = m.loginView()
	case ScreenLobby:
		body = m.lobbyView()
	default:
		body = m.gameView()
	}

	if n := m.notificationView(); n != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", n)
	}
	if m.width == 0 {
		return common.DocStyle.Render(body)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) loginView() string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("🏙️ 地产大亨"))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	if m.busy {
		sb.WriteString("  " + m.wait.View())
	}
	sb.WriteString("\n\n")
	sb.WriteString(common.MutedStyle.Render("回车登录 | ESC 退出"))
	return sb.String()
}

func (m *Model) lobbyView() string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("📋 游戏大厅"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("欢迎, %s!", m.client.PlayerName()))
	sb.WriteString("\n\n")

	if len(m.games) == 0 {
		sb.WriteString(common.MutedStyle.Render("暂无游戏"))
	} else {
		lines := make([]string, 0, len(m.games))
		for i, g := range m.games {
			prefix := "  "
			if i == m.selected {
				prefix = "▶ "
			}
			status := "等待中"
			if g.Started {
				status = "进行中"
			}
			players := strings.Join(g.Players, ", ")
			if players == "" {
				players = "-"
			}
			lines = append(lines, fmt.Sprintf("%s%-8s %s  %s", prefix, shortID(g.ID), status, players))
		}
		sb.WriteString(common.BoxStyle.Render(strings.Join(lines, "\n")))
	}
	sb.WriteString("\n\n")
	if m.busy {
		sb.WriteString(m.wait.View() + " ")
	}
	sb.WriteString(common.MutedStyle.Render("↑↓ 选择 | 回车加入 | c 创建 | r 刷新 | q 退出"))
	return sb.String()
}

func (m *Model) gameView() string {
	v := m.view
	title := common.TitleStyle(fmt.Sprintf("🏙️ 游戏 %s", shortID(m.gameID)))
	status := fmt.Sprintf("阶段: %s | 版本: %d | %s %s", phaseText(v.Phase), v.Version, common.BankIcon, common.Money(v.Bank))
	if v.Dice != [2]int{} {
		status += fmt.Sprintf(" | %s %d+%d", common.DiceIcon, v.Dice[0], v.Dice[1])
	}
	if m.stream != nil {
		if ms := m.stream.Latency(); ms > 0 {
			status += fmt.Sprintf(" | %dms", ms)
		}
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		common.BoxStyle.Render(m.playersView()),
		m.actionsView(),
	)
	right := common.BoxStyle.Width(56).Render(m.logView())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
		"",
		common.MutedStyle.Render(m.helpText()),
	)
}

func (m *Model) playersView() string {
	if len(m.view.Players) == 0 {
		return common.MutedStyle.Render("还没有玩家，按 a 加入")
	}
	lines := []string{"玩家"}
	for _, p := range m.view.Players {
		icon := "  "
		if p.ID == m.view.ActivePlayer {
			icon = common.TurnIcon
		}
		name := common.PlayerStyle(p.Color).Render(common.TruncateName(p.Name, 10))
		if p.ID == m.view.GameMaster {
			name += common.GameMasterIcon
		}
		if p.ID == m.client.PlayerID() {
			name = common.ActiveStyle.Render(name)
		}
		line := fmt.Sprintf("%s %s  %s  %s  %s",
			icon, name,
			common.MoneyStyle.Render(common.Money(p.Money)),
			common.DebtStyle.Render("债 "+common.Money(p.Debt)),
			spaceName(m.game, p.Space),
		)
		lines = append(lines, line, fmt.Sprintf("     资产 %s  身价 %s", common.Money(p.Assets), common.Money(p.NetWorth)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) actionsView() string {
	v := m.view
	var lines []string
	if p := v.Pending; p != nil {
		lines = append(lines, fmt.Sprintf("🏠 %s 可购买 %s，价格 %s", playerName(m.game, p.Player), spaceName(m.game, p.Ground), common.Money(p.Price)))
	}
	if a := v.Auction; a != nil {
		lines = append(lines, fmt.Sprintf("🔨 拍卖 %s：%s 领先 %s", spaceName(m.game, a.Ground), playerName(m.game, a.Leader), common.Money(a.Bid)))
	}
	for _, d := range v.RentToDemand {
		lines = append(lines, fmt.Sprintf("💰 可向 %s 收取 %s 的租金", playerName(m.game, d.Payer), spaceName(m.game, d.Ground)))
	}
	for _, d := range v.RentDemandedForMe {
		lines = append(lines, common.DebtStyle.Render(fmt.Sprintf("💸 需向 %s 支付租金 %s", playerName(m.game, d.Owner), common.Money(d.Rent))))
	}
	for _, t := range v.Trades {
		accepted := "未接受"
		if t.IAccepted {
			accepted = "已接受"
		}
		if t.TheyAccept {
			accepted += "，对方已接受"
		}
		lines = append(lines, fmt.Sprintf("🤝 与 %s 交易：我方 %d 项，对方 %d 项（%s）", playerName(m.game, t.Counterpart), len(t.Mine), len(t.Theirs), accepted))
	}
	if len(lines) == 0 {
		return ""
	}
	return common.PromptStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) logView() string {
	rows := m.log
	if len(rows) > logRows {
		rows = rows[len(rows)-logRows:]
	}
	if len(rows) == 0 {
		return common.MutedStyle.Render("等待事件...")
	}
	return strings.Join(rows, "\n")
}

func (m *Model) helpText() string {
	if !m.view.Started {
		return "a 加入 | s 开始 | ESC 返回大厅 | q 退出"
	}
	return "r 掷骰 | b 购买 | d 放弃 | + 加价 | x 不跟 | m 收租 | p 付租 | t 接受交易 | e 结束回合 | ESC 返回"
}

func (m *Model) notificationView() string {
	n := m.notification
	if n == nil {
		return ""
	}
	switch n.Type {
	case NotifyError:
		return common.ErrorStyle.Render(n.Message)
	case NotifyReconnecting:
		return common.NoticeStyle.Render(n.Message)
	default:
		return common.OKStyle.Render(n.Message)
	}
}

func phaseText(phase string) string {
	switch phase {
	case "", "WaitingForStart":
		return "等待开始"
	case "WaitingForTurn":
		return "回合交接"
	case "WaitingForDiceRoll":
		return "等待掷骰"
	case "LandedOnNewGround":
		return "购买决定"
	case "Bidding":
		return "拍卖中"
	case "BuyingWonBid":
		return "拍卖付款"
	case "WaitingForEndTurn":
		return "等待结束回合"
	default:
		return phase
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
