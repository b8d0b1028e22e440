// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	GameMasterIcon = "👑"
	TurnIcon       = "👉"
	BankIcon       = "🏦"
	DiceIcon       = "🎲"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	OKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	MoneyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	DebtStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	ActiveStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// PlayerColors 可选的玩家颜色，按加入顺序分配
var PlayerColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

var colorCodes = map[string]lipgloss.Color{
	"red":    lipgloss.Color("196"),
	"blue":   lipgloss.Color("33"),
	"green":  lipgloss.Color("40"),
	"yellow": lipgloss.Color("226"),
	"purple": lipgloss.Color("129"),
	"orange": lipgloss.Color("208"),
}

// PlayerStyle 返回玩家颜色对应的样式，未知颜色不着色
func PlayerStyle(color string) lipgloss.Style {
	if c, ok := colorCodes[color]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Bold(true)
}
