package relay

import (
	"encoding/json"
	"fmt"
)

// Frame is the websocket envelope for every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ref   string          `json:"ref,omitempty"`
}

// Encode builds an outbound frame.
func Encode(event string, data any, ref string) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s data: %w", event, err)
	}
	out, err := json.Marshal(Frame{Event: event, Data: raw, Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return out, nil
}
