package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MProject/service/bus"
	match "MProject/service/match"

	"github.com/gorilla/websocket"
)

// dialTestConn spins a ws endpoint and returns the server-side WsConn plus
// the client side of the pipe.
func dialTestConn(t *testing.T, sid string) (*WsConn, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case c := <-serverSide:
		return NewWsConn(sid, c), client
	case <-time.After(2 * time.Second):
		t.Fatal("no server-side conn")
		return nil, nil
	}
}

func TestConnManagerSendDelivers(t *testing.T) {
	m := NewConnManager("gw-test")
	conn, client := dialTestConn(t, "S1")
	m.Add(conn)
	defer m.Close()

	if m.Get("S1") != conn {
		t.Fatal("Get did not return the registered conn")
	}
	if m.Count() != 1 {
		t.Fatalf("Count=%d, want 1", m.Count())
	}

	if !conn.Send([]byte(`{"type":"status"}`)) {
		t.Fatal("Send refused")
	}
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(raw) != `{"type":"status"}` {
		t.Errorf("client got %q", raw)
	}
}

func TestConnManagerRemoveClosesConn(t *testing.T) {
	m := NewConnManager("gw-test")
	conn, client := dialTestConn(t, "S1")
	m.Add(conn)

	m.Remove("S1")
	if m.Get("S1") != nil {
		t.Error("conn still registered after Remove")
	}
	if conn.Send([]byte("x")) {
		t.Error("Send succeeded on closed conn")
	}
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("client read succeeded after server-side close")
	}
}

func TestServerEmitLocalAndRemote(t *testing.T) {
	conns := NewConnManager("gw-test")
	srv, err := NewServer(conns, match.NewMemStore(), bus.Noop{})
	if err != nil {
		t.Fatal(err)
	}

	conn, client := dialTestConn(t, "LOCAL")
	conns.Add(conn)
	defer conns.Close()

	// local session gets the event directly
	srv.Emit(context.Background(), "LOCAL", match.EvWaiting())
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Type != match.EventStatus {
		t.Errorf("client got %q", raw)
	}

	// unknown session falls through to the bus without error
	srv.Emit(context.Background(), "ELSEWHERE", match.EvWaiting())

	// bus delivery for a session another node owns is dropped quietly
	srv.onDelivery(bus.Delivery{To: "NOT-HERE", Event: match.EvWaiting()})
}
