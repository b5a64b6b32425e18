package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chitty/internal/app/broker"
	"chitty/internal/app/user"
	"chitty/internal/pkg/errs"
)

const (
	// writeWait bounds a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod is the heartbeat interval; must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxFrameSize caps inbound frames. Oversized frames are rejected by
	// the transport, never seen by the router.
	maxFrameSize = 65536

	// sendQueueSize buffers replies and error payloads produced by the
	// inbound task while the outbound task drains the socket.
	sendQueueSize = 64
)

// errFeedClosed signals that the broker feed ended underneath a live
// connection. It cancels the sibling task instead of leaving the reader
// waiting out its deadline.
var errFeedClosed = errors.New("topic feed closed")

// Client binds one authenticated user to one WebSocket connection and
// runs the two per-connection tasks: the inbound reader feeding the
// router, and the outbound writer draining the user's topic feed.
type Client struct {
	conn   *websocket.Conn
	user   *user.User
	router *Router

	// send queues payloads from the inbound task to the outbound task.
	send chan []byte

	closeOnce sync.Once
	onClose   func()

	logger zerolog.Logger
}

// NewClient constructs a Client. onClose runs exactly once when the
// connection winds down, regardless of which task observed the close.
func NewClient(conn *websocket.Conn, u *user.User, router *Router, logger zerolog.Logger, onClose func()) *Client {
	return &Client{
		conn:    conn,
		user:    u,
		router:  router,
		send:    make(chan []byte, sendQueueSize),
		onClose: onClose,
		logger:  logger,
	}
}

// Run drives the connection until it closes. Both tasks share one
// cancellation scope: the first to exit cancels the sibling, and cleanup
// runs exactly once.
func (c *Client) Run(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error { return c.writeLoop(ctx) })
	g.Go(func() error {
		// Unblock a reader stuck in ReadMessage once the scope dies.
		<-ctx.Done()
		c.conn.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Debug().Err(err).Msg("Connection tasks finished")
	}

	c.close()
}

// close runs the one-shot teardown.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		c.onClose()
	})
}

// readLoop is the inbound task: read one frame, parse it, hand it to the
// router, and queue the outcome for the outbound task. Bad input is
// answered with an error payload; the connection stays open.
func (c *Client) readLoop(ctx context.Context) error {
	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close")
			}
			return err
		}

		c.processFrame(ctx, frame)
	}
}

// processFrame parses and routes one inbound frame.
func (c *Client) processFrame(ctx context.Context, frame []byte) {
	var msg map[string]any
	if err := json.Unmarshal(frame, &msg); err != nil || msg == nil {
		c.enqueuePayload(errs.ResponseMap(errs.ReasonMalformed, "Invalid message, expected: object"))
		return
	}

	// Remember the tag before the router pops it, for reply stamping.
	msgType, _ := msg["type"].(string)

	reply, err := c.router.Route(ctx, c.user, msg)
	if err != nil {
		var routingErr *RoutingError
		var formatErr *FormatError
		if errors.As(err, &routingErr) || errors.As(err, &formatErr) {
			c.enqueuePayload(errs.ResponseMap(errs.ReasonTypeInvalid, err.Error()))
			return
		}

		c.logger.Error().Err(err).Str("msg_type", msgType).Msg("Handler failed")
		c.enqueuePayload(errs.ResponseMap(errs.ReasonInternal))
		return
	}

	if reply == nil {
		return
	}

	// Success replies carry the type of the request that produced them.
	// Error envelopes keep their fixed shape.
	if reply["status"] != "error" {
		reply["type"] = msgType
	}

	c.enqueuePayload(reply)
}

// enqueuePayload serializes a payload onto the send queue, dropping it if
// the queue is full rather than stalling the reader.
func (c *Client) enqueuePayload(payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling payload for client")
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping payload")
	}
}

// writeLoop is the outbound task: it drains the user's merged topic feed
// and the reply queue into the socket and keeps the heartbeat alive. It
// runs until the feed or the connection closes.
func (c *Client) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	feed := c.user.Feed().Messages()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-feed:
			if !ok {
				return errFeedClosed
			}
			if err := c.writeDelivery(msg); err != nil {
				return err
			}

		case data := <-c.send:
			if err := c.write(data); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return err
			}
		}
	}
}

// writeDelivery forwards one broker delivery, stamping the concrete topic
// it arrived on so pattern-delivered system events name their channel.
func (c *Client) writeDelivery(msg broker.Message) error {
	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Warn().Err(err).Str("topic", msg.Topic).Msg("Dropping undecodable broker delivery")
		return nil
	}

	payload["topic"] = msg.Topic

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error().Err(err).Str("topic", msg.Topic).Msg("Error re-encoding broker delivery")
		return nil
	}

	return c.write(data)
}

// write sends one text frame under the write deadline.
func (c *Client) write(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// writePing sends a heartbeat frame.
func (c *Client) writePing() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
