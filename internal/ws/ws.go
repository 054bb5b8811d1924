// Package ws streams bridge events to dashboard websocket clients.
package ws

import "time"

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096

	sendBuffer = 256
)

type WSClient interface {
	GetSend() chan []byte
	WritePump()
}
