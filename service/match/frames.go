package match

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Inbound frame types. "connect" and "disconnect" are gateway-originated
// and never appear on the wire.
type FrameType string

const (
	FrameJoin   FrameType = "join"
	FrameSignal FrameType = "signal"
	FrameChat   FrameType = "chat_message"
	FrameLeave  FrameType = "leave"
)

// Frame is one inbound client frame: a tag plus a tag-specific payload.
type Frame struct {
	Type    FrameType      `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// SignalPayload is the payload of a signal frame. Data stays opaque, it is
// forwarded verbatim and never inspected.
type SignalPayload struct {
	To   string `json:"to" mapstructure:"to"`
	Data any    `json:"data" mapstructure:"data"`
}

// ChatPayload is the payload of a chat_message frame.
type ChatPayload struct {
	Message string `json:"message" mapstructure:"message"`
}

// ParseFrameJSON decodes one raw ws message into a tagged frame.
func ParseFrameJSON(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "unmarshal frame")
	}
	if f.Type == "" {
		return nil, errors.New("frame missing type")
	}
	return &f, nil
}

// DecodePayload maps a frame's loose payload onto a typed struct, so a
// malformed payload is one explicit decode failure instead of field checks
// scattered through the handlers.
func DecodePayload[T any](payload map[string]any) (*T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new decoder")
	}
	if err := dec.Decode(payload); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return &out, nil
}
