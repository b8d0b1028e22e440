package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/property-tycoon/internal/protocol"
)

// Codec 编解码 WebSocket 帧
type Codec interface {
	Name() string
	// Binary 为 true 时帧以二进制消息发送
	Binary() bool
	Encode(msg *protocol.Message) ([]byte, error)
	// Decode 返回的消息来自对象池，用完后调用 PutMessage
	Decode(data []byte) (*protocol.Message, error)
}

// ForName 按名称选择编码，空名称为 json
func ForName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "proto":
		return Proto{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
}

// JSON 文本帧
type JSON struct{}

func (JSON) Name() string { return "json" }
func (JSON) Binary() bool { return false }

func (JSON) Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 追加换行
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

func (JSON) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	return msg, nil
}

// Proto 二进制帧：{type, payload} 编码为 google.protobuf.Struct
type Proto struct{}

func (Proto) Name() string { return "proto" }
func (Proto) Binary() bool { return true }

func (Proto) Encode(msg *protocol.Message) ([]byte, error) {
	fields := map[string]*structpb.Value{
		"type": structpb.NewStringValue(string(msg.Type)),
	}
	if len(msg.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		v, err := structpb.NewValue(payload)
		if err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		fields["payload"] = v
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(&structpb.Struct{Fields: fields})
}

func (Proto) Decode(data []byte) (*protocol.Message, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(s.GetFields()["type"].GetStringValue())
	if msg.Type == "" {
		PutMessage(msg)
		return nil, fmt.Errorf("message without type")
	}
	if v, ok := s.GetFields()["payload"]; ok {
		payload, err := json.Marshal(v.AsInterface())
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = payload
	}
	return msg, nil
}
