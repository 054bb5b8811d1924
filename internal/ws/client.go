package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

var _ WSClient = (*Client)(nil)

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) GetSend() chan []byte {
	return c.Send
}

func (c *Client) write(messageType int, data []byte) error {
	c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return c.Conn.WriteMessage(messageType, data)
}

// WritePump sends queued envelopes and keepalive pings until the hub closes
// Send or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(PingPeriod)
	defer ping.Stop()
	defer c.Conn.Close()

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				c.write(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unregistered"))
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Hub.logger.Debug("ws write failed", "err", err)
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type incomingMessage struct {
	Action string `json:"action"`
}

type ActionHandler func(action string)

// ReadPump reads {"action": ...} messages until the connection drops, then
// unregisters the client.
func (c *Client) ReadPump(onAction ActionHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var msg incomingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Action == "" {
			continue
		}

		onAction(msg.Action)
	}
}
