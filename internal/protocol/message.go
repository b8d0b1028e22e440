package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing    MessageType = "ping"    // 心跳 ping
	MsgCommand MessageType = "command" // 提交命令
	MsgSync    MessageType = "sync"    // 请求从某个版本开始的事件
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgEvents    MessageType = "events"    // 新事件
	MsgResult    MessageType = "result"    // 命令结果
	MsgError     MessageType = "error"     // 错误消息
)
