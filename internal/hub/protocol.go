package hub

import (
	"encoding/json"
	"time"
)

// Server→client message types. Change events additionally use their own
// type tags (disk_added, pool_health_change, ...) injected by
// events.Wire.
const (
	msgInitialState = "initial_state"
	msgStateUpdate  = "state_update"
	msgPong         = "pong"
	msgError        = "error"
)

// Client→server message types accepted after the handshake. Anything
// else is ignored without closing the connection.
const (
	msgPing         = "ping"
	msgRequestState = "request_state"
)

// envelope is the server-side wire format.
type envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// inbound is every client message the hub understands: the
// authentication handshake and the two steady-state requests.
type inbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func marshalEnvelope(typ string, data any, stamped bool) ([]byte, error) {
	env := envelope{Type: typ, Data: data}
	if stamped {
		env.Timestamp = time.Now().Format(time.RFC3339)
	}
	return json.Marshal(env)
}
