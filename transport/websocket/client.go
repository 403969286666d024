package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Outbound frames buffered per client before the connection is dropped.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The game is served from arbitrary origins during development.
		return true
	},
}

// Client is one connected player from the server's point of view. It
// implements session.Conn: Send enqueues onto a buffered channel that the
// write pump drains, so game code never blocks on the network.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Send marshals v and queues it for delivery. If the client's buffer is
// full the frame is dropped and the connection closed; a peer that slow is
// treated as gone.
func (c *Client) Send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal outbound message: %v", err)
		return
	}

	defer func() {
		// The send channel is closed once the client unregisters; a late
		// Send after disconnect is a no-op, not a crash.
		if recover() != nil {
			log.Printf("dropped message to closed connection %s", c.conn.RemoteAddr())
		}
	}()

	select {
	case c.send <- data:
	default:
		log.Printf("send buffer full, closing slow client %s", c.conn.RemoteAddr())
		c.conn.Close()
	}
}

// readPump reads frames from the connection and feeds them to the hub.
// It unregisters the client when the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("unexpected close from %s: %v", c.conn.RemoteAddr(), err)
			}
			break
		}

		c.hub.incoming <- inboundFrame{
			client: c,
			data:   data,
			binary: messageType == websocket.BinaryMessage,
		}
	}
}

// writePump drains the send channel onto the connection and keeps the peer
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel: the client unregistered.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("write failed for %s: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
