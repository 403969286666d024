// Package websocket is the wire transport: it upgrades HTTP connections,
// runs the per-connection read/write pumps, and forwards connection events
// to the game-side EventHandler. It knows nothing about the game protocol.
package websocket

import (
	"log"
	"net/http"

	"seabattle/game/session"
)

// EventHandler is the seam between the transport and the game logic. The
// dispatcher implements it; the hub calls it from its single event loop.
type EventHandler interface {
	// OnConnect is called when a client connection is established.
	OnConnect(c session.Conn)

	// OnDisconnect is called exactly once when a connection closes.
	OnDisconnect(c session.Conn)

	// OnMessage is called for every inbound text frame.
	OnMessage(c session.Conn, data []byte)

	// OnBinary is called when a client sends a binary frame.
	OnBinary(c session.Conn)
}

// inboundFrame pairs a frame with the client that sent it.
type inboundFrame struct {
	client *Client
	data   []byte
	binary bool
}

// Hub owns the set of live clients and serializes connection events onto
// one goroutine. Clients register and unregister through channels; frames
// flow through the incoming channel to the handler.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan inboundFrame
	handler    EventHandler
}

// NewHub creates a hub that reports events to the given handler.
func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inboundFrame),
		handler:    handler,
	}
}

// Run starts the hub's event loop. It must be running before any client
// connects.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Closing send stops the client's write pump.
				close(client.send)
				h.handler.OnDisconnect(client)
			}

		case frame := <-h.incoming:
			if frame.binary {
				h.handler.OnBinary(frame.client)
				continue
			}
			h.handler.OnMessage(frame.client, frame.data)
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and starts the
// client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
