package apperrors

import (
	"errors"
	"fmt"

	"github.com/palemoky/property-tycoon/internal/protocol"
)

// GameError 游戏错误，按错误码比较
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 错误码相同即视为同一类错误
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	return ok && t.Code == e.Code
}

// 预定义错误
var (
	ErrInvalidMessage  = &GameError{Code: protocol.ErrCodeInvalidMsg, Message: "无效的消息格式"}
	ErrUnauthorized    = &GameError{Code: protocol.ErrCodeUnauthorized, Message: "身份验证失败"}
	ErrGameNotFound    = &GameError{Code: protocol.ErrCodeGameNotFound, Message: "游戏不存在"}
	ErrVersionConflict = &GameError{Code: protocol.ErrCodeVersionConflict, Message: "版本冲突"}
	ErrIllegalCommand  = &GameError{Code: protocol.ErrCodeIllegalCommand, Message: "当前无法执行该操作"}
)

// Illegal 带原因的 ErrIllegalCommand
func Illegal(format string, args ...any) *GameError {
	return &GameError{Code: protocol.ErrCodeIllegalCommand, Message: fmt.Sprintf(format, args...)}
}

// Conflict 带版本信息的 ErrVersionConflict
func Conflict(expected, current int) *GameError {
	return &GameError{
		Code:    protocol.ErrCodeVersionConflict,
		Message: fmt.Sprintf("版本冲突: 期望 %d, 当前 %d", expected, current),
	}
}

// Code 提取错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
