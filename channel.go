package intelinfo

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
	"github.com/intelinfo/intelinfo-go/utils/stream"
)

// Channel is a live connection to the backend's push endpoint. It delivers
// decoded push events through a pull-based stream; the server never expects
// frames from the client. There is no automatic reconnect: once the stream
// ends the channel is done, and reconnecting is the caller's decision.
type Channel struct {
	conn   *websocket.Conn
	logger *zap.Logger

	events  chan PushEvent
	errC    chan error
	stream  *stream.Stream[PushEvent]
	done    chan struct{}
	session *tracing.Session

	closeOnce sync.Once
	closeErr  error
}

// Live opens the push channel for this client's base URL. The connection is
// dialed immediately; a dial failure is reported as a NetworkError.
func (c *Client) Live(ctx context.Context) (*Channel, error) {
	wsURL, err := websocketURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	_, session := tracing.StartSession(ctx, "live", wsURL)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		netErr := NewNetworkError(c.baseURL, err)
		session.End(netErr)
		return nil, netErr
	}

	ch := &Channel{
		conn:    conn,
		logger:  c.logger,
		events:  make(chan PushEvent),
		errC:    make(chan error, 1),
		done:    make(chan struct{}),
		session: session,
	}
	ch.stream = stream.New(ch.events, ch.errC)

	c.logger.Debug("live channel open", zap.String("url", wsURL))
	go ch.readLoop()
	return ch, nil
}

// Events returns the push event stream. Frames are delivered in transport
// order; malformed frames are dropped without terminating the stream.
func (ch *Channel) Events() *stream.Stream[PushEvent] {
	return ch.stream
}

// Close tears the connection down. It is idempotent, and after it returns
// no further events are delivered even for frames already in flight.
func (ch *Channel) Close() error {
	ch.closeOnce.Do(func() {
		close(ch.done)
		ch.closeErr = ch.conn.Close()
	})
	return ch.closeErr
}

// readLoop pumps frames from the connection into the event stream until the
// connection dies or Close is called.
func (ch *Channel) readLoop() {
	var terminal error
	defer func() {
		ch.session.End(terminal)
		close(ch.events)
	}()

	for {
		_, data, err := ch.conn.ReadMessage()
		if err != nil {
			select {
			case <-ch.done:
				// Deliberate teardown, not an error.
			default:
				terminal = err
				ch.errC <- err
			}
			return
		}

		var event PushEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// A single malformed frame must never take down a
			// long-lived connection. Log and keep reading.
			ch.logger.Warn("dropping malformed frame", zap.Error(err))
			ch.session.OnDropped()
			continue
		}

		select {
		case ch.events <- event:
			ch.session.OnDelivered()
		case <-ch.done:
			return
		}
	}
}
