package ws

import "time"

// ConnInfo captures request metadata for a live websocket connection.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
