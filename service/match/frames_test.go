package match

import (
	"encoding/json"
	"testing"
)

func TestParseFrameJSON(t *testing.T) {
	f, err := ParseFrameJSON([]byte(`{"type":"signal","payload":{"to":"B","data":{"sdp":"x"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Type != FrameSignal {
		t.Errorf("type %q, want signal", f.Type)
	}
	if f.Payload["to"] != "B" {
		t.Errorf("payload to=%v", f.Payload["to"])
	}
}

func TestParseFrameJSONRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`{`, `[]`, `"join"`, `{"payload":{}}`} {
		if _, err := ParseFrameJSON([]byte(raw)); err == nil {
			t.Errorf("accepted %q", raw)
		}
	}
}

func TestDecodeSignalPayload(t *testing.T) {
	p, err := DecodePayload[SignalPayload](map[string]any{
		"to":   "B",
		"data": map[string]any{"candidate": "c"},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.To != "B" || p.Data == nil {
		t.Errorf("decoded %+v", p)
	}

	// missing fields decode to zero values; the engine drops those
	p, err = DecodePayload[SignalPayload](map[string]any{})
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if p.To != "" || p.Data != nil {
		t.Errorf("empty payload decoded to %+v", p)
	}
}

func TestDecodeChatPayload(t *testing.T) {
	p, err := DecodePayload[ChatPayload](map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Message != "hi" {
		t.Errorf("message %q", p.Message)
	}
}

func TestEventWireShape(t *testing.T) {
	raw, err := json.Marshal(EvMatched("B", "room-A-B"))
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Type    string `json:"type"`
		Payload struct {
			Peer string `json:"peer"`
			Room string `json:"room"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != EventMatched || got.Payload.Peer != "B" || got.Payload.Room != "room-A-B" {
		t.Errorf("wire shape %s", raw)
	}
}
