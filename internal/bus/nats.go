package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS relays frames over a core NATS subject.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATS connects to the NATS server at url.
func NewNATS(url, subject string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("scenesync"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &NATS{conn: conn, subject: subject, logger: logger}, nil
}

// Publish implements Bus.
func (n *NATS) Publish(ctx context.Context, msg Message) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscribe implements Bus.
func (n *NATS) Subscribe(ctx context.Context, h Handler) error {
	sub, err := n.conn.Subscribe(n.subject, func(m *nats.Msg) {
		msg, err := decode(m.Data)
		if err != nil {
			n.logger.Warn("dropping bus message", "error", err)
			return
		}
		h(msg)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	n.logger.Info("bus subscribed", "driver", "nats", "subject", n.subject)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil && n.conn.IsConnected() {
		return fmt.Errorf("nats unsubscribe: %w", err)
	}
	return nil
}

// Close implements Bus.
func (n *NATS) Close() error {
	n.conn.Close()
	return nil
}
