package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short name within limit", "Alice", 10, "Alice"},
		{"exact length", "HelloWorld", 10, "HelloWorld"},
		{"long name truncated", "VeryLongPlayerName", 10, "VeryLongP…"},
		{"chinese name truncated", "地产大亨玩家", 4, "地产大…"},
		{"empty name", "", 10, ""},
		{"single char limit", "Hello", 1, "…"},
		{"zero limit", "Hello", 0, ""},
		{"negative limit", "Hello", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := TruncateName(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMoney(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "$1500", Money(1500))
	assert.Equal(t, "$0", Money(0))
	assert.Equal(t, "-$20", Money(-20))
}

func TestFreeColor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "red", FreeColor(nil))
	assert.Equal(t, "green", FreeColor([]string{"red", "blue"}))
	assert.Equal(t, "green", FreeColor([]string{"blue", "red"}))
	assert.Equal(t, PlayerColors[0], FreeColor(PlayerColors))
}
