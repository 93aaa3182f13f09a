// Package bus relays room frames between scenesync instances.
//
// Every frame published on one instance is delivered to all subscribed
// instances, including the publisher; receivers use Message.Origin to drop
// their own frames. Delivery is best-effort.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SurakshaKumari/gt-3D-backend/internal/config"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("bus: closed")

// Message is one room frame in transit between instances.
type Message struct {
	Origin    string          `json:"origin"`    // Publishing instance ID
	ProjectID string          `json:"projectId"` // Target room
	Exclude   string          `json:"exclude,omitempty"`
	Frame     json.RawMessage `json:"frame"` // Encoded websocket frame
}

// Handler receives messages from other instances.
type Handler func(Message)

// Bus is a cross-instance pub/sub channel.
type Bus interface {
	// Publish sends msg to every subscriber.
	Publish(ctx context.Context, msg Message) error

	// Subscribe delivers messages to h until ctx is cancelled.
	Subscribe(ctx context.Context, h Handler) error

	// Close releases the underlying connection.
	Close() error
}

// New opens the bus selected by cfg.Driver. It returns nil for "none".
func New(cfg config.BusConfig, logger *slog.Logger) (Bus, error) {
	switch cfg.Driver {
	case config.BusNone, "":
		return nil, nil
	case config.BusRedis:
		b, err := NewRedis(cfg.Redis, cfg.Subject, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BusNATS:
		b, err := NewNATS(cfg.NATS.URL, cfg.Subject, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}
}

func encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode bus message: %w", err)
	}
	return data, nil
}

func decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode bus message: %w", err)
	}
	return msg, nil
}
