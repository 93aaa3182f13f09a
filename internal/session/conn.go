package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn is one websocket client. It implements room.Participant.
type conn struct {
	id     string
	cfg    Config
	ws     *websocket.Conn
	logger *slog.Logger
	outbox *outbox

	done      chan struct{}
	closeOnce sync.Once

	mu          sync.RWMutex
	displayName string
	connectedAt time.Time
}

func newConn(id string, ws *websocket.Conn, cfg Config, logger *slog.Logger) *conn {
	return &conn{
		id:          id,
		cfg:         cfg,
		ws:          ws,
		logger:      logger.With("participant", id),
		outbox:      newOutbox(cfg.OutboxSize),
		done:        make(chan struct{}),
		displayName: DefaultDisplayName,
		connectedAt: time.Now(),
	}
}

// ID returns the participant ID.
func (c *conn) ID() string { return c.id }

// DisplayName returns the last announced display name.
func (c *conn) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayName
}

func (c *conn) setDisplayName(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	c.displayName = name
	c.mu.Unlock()
}

// Age returns how long the connection has been open.
func (c *conn) Age() time.Duration {
	return time.Since(c.connectedAt)
}

// Send queues an encoded frame for the write loop. It never blocks and
// returns false once the connection is closing.
func (c *conn) Send(frame []byte) bool {
	return c.outbox.Send(frame)
}

// readLoop reads frames until the socket fails or is closed, handing each
// to handle in order. The read deadline is extended on every frame and pong.
func (c *conn) readLoop(handle func(data []byte)) error {
	c.ws.SetReadLimit(c.cfg.MaxMessageBytes)
	c.extendDeadline()
	c.ws.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		c.extendDeadline()
		handle(data)
	}
}

func (c *conn) extendDeadline() {
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
}

// writeLoop is the only writer of data frames. It drains the outbox when
// signalled and pings on every tick.
func (c *conn) writeLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case <-c.outbox.Ready():
			for c.outbox.Len() > 0 {
				for _, frame := range c.outbox.DrainTo(c.cfg.WriteBatch) {
					c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
					if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
						c.logger.Debug("write failed", "error", err)
						c.close(websocket.CloseAbnormalClosure, "")
						return
					}
				}
				select {
				case <-c.done:
					return
				default:
				}
			}

		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				c.close(websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}

// close stops both loops. Safe to call from any goroutine, any number of
// times; the read loop observes it as a read error.
func (c *conn) close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.outbox.Close()
		close(c.done)

		if code != websocket.CloseAbnormalClosure {
			c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason),
				time.Now().Add(time.Second),
			)
		}
		c.ws.Close()
	})
}
