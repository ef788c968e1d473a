package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"tracking/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrConnectionClosed = errors.New("websocket connection is closed")

// Connection is one upgraded client. It is a ports.Connection: the broadcaster
// writes event batches through Send while the read loop writes acknowledgements.
// gorilla connections allow one concurrent writer, so every write holds writeMu.
type Connection struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(conn *websocket.Conn, writeTimeout time.Duration) *Connection {
	return &Connection{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Send writes the batch as consecutive frames. No other frame can interleave.
func (c *Connection) Send(ctx context.Context, events []shipment.Event) error {
	frames := make([]ServerFrame, 0, len(events))
	for _, event := range events {
		frame, err := eventFrame(event)
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}
	return c.write(ctx, frames...)
}

// Close closes the socket; the read loop then exits and unsubscribes.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *Connection) write(ctx context.Context, frames ...ServerFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	for _, frame := range frames {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if err = c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}
