package packet

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// LogLevel is the severity recorded with a message packet.
type LogLevel uint8

const (
	LogAlways LogLevel = iota
	LogDebug
	LogInfo
	LogWarning
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogAlways:
		return "always"
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the body of a PacketMessage packet.
type Message struct {
	Level LogLevel `msgpack:"level"`
	Text  string   `msgpack:"text"`
}

// EncodeMessage builds the body of a message packet.
func EncodeMessage(m Message) ([]byte, error) {
	return msgpack.Marshal(&m)
}

// DecodeMessage reads the body of a message packet.
func DecodeMessage(h *Header) (Message, error) {
	var m Message
	if h == nil || h.PacketID != PacketMessage {
		return m, fmt.Errorf("not a message packet")
	}
	if len(h.Body) == 0 {
		return m, nil
	}
	if err := msgpack.Unmarshal(h.Body, &m); err != nil {
		return Message{}, fmt.Errorf("decode message packet %d: %w", h.GlobalPacketIndex, err)
	}
	return m, nil
}
