// Package common provides shared utilities for the UI.
package common

import (
	"fmt"
	"slices"
)

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// Money 金额显示，负数带符号
func Money(n int) string {
	if n < 0 {
		return fmt.Sprintf("-$%d", -n)
	}
	return fmt.Sprintf("$%d", n)
}

// FreeColor 返回第一个未被占用的颜色，全部占用时按人数轮转
func FreeColor(taken []string) string {
	for _, c := range PlayerColors {
		if !slices.Contains(taken, c) {
			return c
		}
	}
	return PlayerColors[len(taken)%len(PlayerColors)]
}
