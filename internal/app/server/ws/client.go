package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var errClientClosed = errors.New("client closed")

// RuntimeClient binds one authenticated identity to one live websocket. All
// outbound writes funnel through a single writeLoop goroutine so concurrent
// fanouts never interleave on the wire.
type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	userID string
	connID string
	out    chan []byte
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, userID string) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		userID: userID,
		connID: uuid.NewString(),
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) UserID() string { return c.userID }
func (c *RuntimeClient) ConnID() string { return c.connID }

// Send enqueues data for the write pump. A send racing or following Close
// returns errClientClosed; it must never panic, since fanout paths resolve a
// connection and push to it without holding any lock.
func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.ctx.Done():
		return errClientClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return errClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is idempotent. The out channel is never closed: writeLoop exits via
// the cancelled context, and a late Send sees the same context instead of a
// closed channel.
func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
