package notification

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/gorilla/websocket"
)

// WebSocketObserver delivers notifications as text frames over a websocket.
type WebSocketObserver struct {
	conn *websocket.Conn

	// gorilla connections support one concurrent writer
	writeMu sync.Mutex
}

func NewWebSocketObserver(conn *websocket.Conn) *WebSocketObserver {
	return &WebSocketObserver{conn: conn}
}

func (o *WebSocketObserver) Send(ctx context.Context, message string) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := o.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return o.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// Close closes the underlying connection, which also ends listen.
func (o *WebSocketObserver) Close() error {
	return o.conn.Close()
}

// listen blocks until the client disconnects. Whatever the client sends is a
// keep-alive and is discarded.
func (o *WebSocketObserver) listen() error {
	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

// Serve registers conn as an observer and holds it until the client goes away
// or ctx is cancelled. The connection is closed on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	observer := NewWebSocketObserver(conn)

	h.Register(observer)
	logger := log.FromContext(ctx).WithField("remote_addr", conn.RemoteAddr().String())
	logger.Info("Observer connected")

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	defer func() {
		stop()
		h.Unregister(observer)
		_ = conn.Close()
		logger.Info("Observer disconnected")
	}()

	if err := observer.listen(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.WithError(err).Debug("Observer connection closed")
	}
}
