package gateway

import (
	"net"
	"sync"
	"time"

	"MProject/logger"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 64
	writeWait     = 5 * time.Second
	pingEvery     = 30 * time.Second
)

// WsConn is one live client connection. All writes go through SendChan and
// a single writer goroutine; gorilla conns allow one concurrent writer.
type WsConn struct {
	SID    string
	Conn   *websocket.Conn
	Remote net.Addr

	CreatedAt time.Time
	SendChan  chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewWsConn(sid string, conn *websocket.Conn) *WsConn {
	return &WsConn{
		SID:       sid,
		Conn:      conn,
		Remote:    conn.RemoteAddr(),
		CreatedAt: time.Now(),
		SendChan:  make(chan []byte, sendQueueSize),
		done:      make(chan struct{}),
	}
}

// Send enqueues one outbound frame. Best-effort: a slow consumer with a
// full queue loses the frame rather than blocking the engine.
func (c *WsConn) Send(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.SendChan <- b:
		return true
	default:
		logger.Warnf("[ws] send queue full, dropping frame sid=%s", c.SID)
		return false
	}
}

func (c *WsConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			logger.Debugf("[ws] close conn sid=%s: %v", c.SID, err)
		}
	})
}

// writeLoop is the sole writer: outbound frames plus keepalive pings.
func (c *WsConn) writeLoop() {
	t := time.NewTicker(pingEvery)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case b := <-c.SendChan:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Infof("[ws] write err sid=%s err=%v", c.SID, err)
				c.Close()
				return
			}
		case <-t.C:
			_ = c.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
		}
	}
}

// ConnManager indexes the node's live connections by session id.
type ConnManager struct {
	mu    sync.RWMutex
	bySID map[string]*WsConn
	gwID  string
}

func NewConnManager(gwID string) *ConnManager {
	return &ConnManager{
		bySID: make(map[string]*WsConn),
		gwID:  gwID,
	}
}

func (m *ConnManager) GwID() string { return m.gwID }

func (m *ConnManager) Add(c *WsConn) {
	m.mu.Lock()
	m.bySID[c.SID] = c
	m.mu.Unlock()
	go c.writeLoop()
}

func (m *ConnManager) Get(sid string) *WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySID[sid]
}

func (m *ConnManager) Remove(sid string) {
	m.mu.Lock()
	c := m.bySID[sid]
	delete(m.bySID, sid)
	m.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySID)
}

func (m *ConnManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, c := range m.bySID {
		c.Close()
		delete(m.bySID, sid)
	}
}
