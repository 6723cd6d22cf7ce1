package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"MProject/logger"
	"MProject/service/bus"
	match "MProject/service/match"
	errs "MProject/tools/errs"
	ids "MProject/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	readLimit = 1 << 20 // 1MB
	pongWait  = 75 * time.Second
)

type frameHandler func(ctx context.Context, sid string, f *match.Frame) error

// Server is the websocket edge of one gateway node. It assigns session
// ids, feeds inbound frames to the engine and routes outbound events to
// local connections or onto the bus.
type Server struct {
	conns    *ConnManager
	engine   *match.Engine
	bus      bus.Bus
	handlers map[match.FrameType]frameHandler
}

func NewServer(conns *ConnManager, store match.Store, b bus.Bus) (*Server, error) {
	s := &Server{conns: conns, bus: b}
	s.engine = match.NewEngine(store, s)

	s.handlers = map[match.FrameType]frameHandler{
		match.FrameJoin: func(ctx context.Context, sid string, _ *match.Frame) error {
			return s.engine.Join(ctx, sid)
		},
		match.FrameSignal: func(ctx context.Context, sid string, f *match.Frame) error {
			p, err := match.DecodePayload[match.SignalPayload](f.Payload)
			if err != nil {
				// protocol error: drop, log, no reply
				logger.Warnf("[ws] bad signal payload sid=%s err=%v", sid, err)
				return nil
			}
			return s.engine.ForwardSignal(ctx, sid, p)
		},
		match.FrameChat: func(ctx context.Context, sid string, f *match.Frame) error {
			p, err := match.DecodePayload[match.ChatPayload](f.Payload)
			if err != nil {
				logger.Warnf("[ws] bad chat payload sid=%s err=%v", sid, err)
				return nil
			}
			return s.engine.ForwardChat(ctx, sid, p.Message)
		},
		match.FrameLeave: func(ctx context.Context, sid string, _ *match.Frame) error {
			return s.engine.Leave(ctx, sid)
		},
	}

	if err := b.Subscribe(s.onDelivery); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Engine() *match.Engine { return s.engine }

// Emit implements match.Emitter. Locally-owned sessions get the event
// directly; everything else goes onto the bus for the owning node.
func (s *Server) Emit(ctx context.Context, to string, ev match.Event) {
	if c := s.conns.Get(to); c != nil {
		s.deliver(c, ev)
		return
	}
	if err := s.bus.Publish(ctx, bus.Delivery{To: to, Event: ev}); err != nil {
		logger.Errorf("[ws] publish event for %s: %v", to, err)
	}
}

// onDelivery handles bus traffic; only the node owning the session acts.
func (s *Server) onDelivery(d bus.Delivery) {
	if c := s.conns.Get(d.To); c != nil {
		s.deliver(c, d.Event)
	}
}

func (s *Server) deliver(c *WsConn, ev match.Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[ws] marshal event type=%s: %v", ev.Type, err)
		return
	}
	c.Send(raw)
}

// HandleWS upgrades the request and runs the connection's read loop until
// the client goes away.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	sid := ids.GenerateString()
	conn := NewWsConn(sid, ws)
	s.conns.Add(conn)
	logger.Infof("[ws] client connected sid=%s remote=%s", sid, conn.Remote)

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	s.Emit(ctx, sid, match.EvConnected(sid))

	s.readLoop(conn)

	// involuntary teardown runs exactly once, when the read loop exits
	s.conns.Remove(sid)
	s.engine.Disconnect(context.Background(), sid)
	logger.Infof("[ws] client disconnected sid=%s", sid)
}

func (s *Server) readLoop(conn *WsConn) {
	for {
		mt, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed sid=%s err=%v", conn.SID, err)
			} else {
				logger.Infof("[ws] read err sid=%s err=%v", conn.SID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, perr := match.ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[ws] parse frame err sid=%s err=%v sample=%q", conn.SID, perr, sample)
			continue
		}

		h, ok := s.handlers[f.Type]
		if !ok {
			logger.Warnf("[ws] no handler for frame type=%s sid=%s", f.Type, conn.SID)
			continue
		}

		// one session's failure must never take down the loop: errors are
		// logged and surfaced to this session only
		if err := h(context.Background(), conn.SID, f); err != nil {
			logger.Errorf("[ws] handle %s sid=%s: %v", f.Type, conn.SID, err)
			s.deliver(conn, match.EvError(errs.ClientMsg(err)))
		}
	}
}
