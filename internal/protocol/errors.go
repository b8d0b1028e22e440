package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeUnauthorized      = 1003 // 身份无效
	ErrCodeGameNotFound      = 2001
	ErrCodeVersionConflict   = 3001 // 版本冲突，需要重新同步
	ErrCodeIllegalCommand    = 3002 // 当前状态下不可执行
	ErrCodeStorage           = 5001
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeUnauthorized:      "身份验证失败",
	ErrCodeGameNotFound:      "游戏不存在",
	ErrCodeVersionConflict:   "版本冲突，请同步后重试",
	ErrCodeIllegalCommand:    "当前无法执行该操作",
	ErrCodeStorage:           "存储错误",
	ErrCodeServerMaintenance: "服务器维护中",
}
