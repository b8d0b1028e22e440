package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/property-tycoon/internal/protocol"
)

func TestGameError_IsByCode(t *testing.T) {
	t.Parallel()

	err := Illegal("%s 不是当前玩家", "p2")
	assert.ErrorIs(t, err, ErrIllegalCommand)
	assert.NotErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, "p2 不是当前玩家", err.Error())

	wrapped := fmt.Errorf("submit: %w", Conflict(3, 5))
	assert.ErrorIs(t, wrapped, ErrVersionConflict)
	assert.Equal(t, protocol.ErrCodeVersionConflict, Code(wrapped))
}

func TestCode_Unknown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, protocol.ErrCodeUnknown, Code(errors.New("boom")))
}
