// Package ws streams simulation frames to websocket clients.
//
// Every frame is sent as one binary message holding a protobuf
// google.protobuf.Struct with the frame's JSON form. A client connecting
// mid-run gets the latest frame right away.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/npillmayer/circuit/internal/sim"
	"github.com/npillmayer/schuko/tracing"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// tracer writes to trace with key 'circuit.ws'
func tracer() tracing.Trace {
	return tracing.Select("circuit.ws")
}

// Hub is the set of connected clients.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	last     []byte
}

// NewHub creates a hub without clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Encode turns a frame into its wire form.
func Encode(f sim.Frame) ([]byte, error) {
	m, err := f.Map()
	if err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// Decode reads a frame message back into its JSON form.
func Decode(payload []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(payload, &st); err != nil {
		return nil, err
	}
	return st.AsMap(), nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends a frame to all clients. Clients failing to receive it are
// dropped.
func (h *Hub) Broadcast(f sim.Frame) error {
	payload, err := Encode(f)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			tracer().Infof("dropping client %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	if h.last != nil {
		if err := conn.WriteMessage(websocket.BinaryMessage, h.last); err != nil {
			tracer().Infof("client %s: %v", conn.RemoteAddr(), err)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ServeHTTP upgrades a request to a websocket and keeps the client until
// it disconnects. Messages from clients are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		tracer().Errorf("websocket upgrade failed: %v", err)
		return
	}
	h.add(conn)
	defer h.remove(conn)
	tracer().Infof("client %s connected", conn.RemoteAddr())
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			tracer().Debugf("client %s gone: %v", conn.RemoteAddr(), err)
			return
		}
	}
}
