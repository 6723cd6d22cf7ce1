package match

// Outbound event types, addressed to one session each.
const (
	EventConnected           = "connected"
	EventStatus              = "status"
	EventMatched             = "matched"
	EventSignal              = "signal"
	EventChat                = "chat_message"
	EventPartnerLeft         = "partner_left"
	EventPartnerDisconnected = "partner_disconnected"
	EventLeft                = "left"
	EventError               = "error"
)

// Event is one outbound frame. Payload is a fixed struct per type.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type sidPayload struct {
	SID string `json:"sid"`
}

type msgPayload struct {
	Msg string `json:"msg"`
}

type matchedPayload struct {
	Peer string `json:"peer"`
	Room string `json:"room"`
}

type signalPayload struct {
	From string `json:"from"`
	Data any    `json:"data"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type peerPayload struct {
	Peer string `json:"peer"`
}

func EvConnected(sid string) Event {
	return Event{Type: EventConnected, Payload: sidPayload{SID: sid}}
}

func EvWaiting() Event {
	return Event{Type: EventStatus, Payload: msgPayload{Msg: "waiting"}}
}

func EvMatched(peer, room string) Event {
	return Event{Type: EventMatched, Payload: matchedPayload{Peer: peer, Room: room}}
}

func EvSignal(from string, data any) Event {
	return Event{Type: EventSignal, Payload: signalPayload{From: from, Data: data}}
}

// EvChat carries no sender id: the partner is the only possible sender.
func EvChat(message string) Event {
	return Event{Type: EventChat, Payload: chatPayload{Message: message}}
}

func EvPartnerLeft(peer string) Event {
	return Event{Type: EventPartnerLeft, Payload: peerPayload{Peer: peer}}
}

func EvPartnerDisconnected(peer string) Event {
	return Event{Type: EventPartnerDisconnected, Payload: peerPayload{Peer: peer}}
}

func EvLeft() Event {
	return Event{Type: EventLeft, Payload: msgPayload{Msg: "You left the conversation"}}
}

func EvError(msg string) Event {
	return Event{Type: EventError, Payload: msgPayload{Msg: msg}}
}
