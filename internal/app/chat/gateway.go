package chat

import (
	"context"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chitty/internal/app/broker"
	"chitty/internal/app/user"
	"chitty/internal/pkg/logx"
	"chitty/internal/pkg/randx"
)

// Gateway owns the relay's connection lifecycle: capacity accounting,
// identity minting, feed setup, registry membership and per-connection
// task supervision.
type Gateway struct {
	registry *Registry
	bus      broker.Bus
	router   *Router

	maxConnections int64
	active         atomic.Int64

	logger zerolog.Logger
}

// NewGateway wires a gateway over the given bus with a connection cap.
func NewGateway(bus broker.Bus, maxConnections int) *Gateway {
	registry := NewRegistry()
	handlers := NewHandlers(registry, bus)

	return &Gateway{
		registry:       registry,
		bus:            bus,
		router:         NewRouter(handlers),
		maxConnections: int64(maxConnections),
		logger:         logx.Logger().With().Str("component", "gateway").Logger(),
	}
}

// TryAcquire claims one connection slot. It must be called before the
// WebSocket upgrade so capacity rejections stay plain HTTP.
func (g *Gateway) TryAcquire() bool {
	if g.active.Add(1) > g.maxConnections {
		g.active.Add(-1)
		return false
	}
	return true
}

// Release returns a slot claimed by TryAcquire.
func (g *Gateway) Release() {
	g.active.Add(-1)
}

// Active returns the number of currently claimed connection slots.
func (g *Gateway) Active() int64 {
	return g.active.Load()
}

// Registry exposes the connected-user directory.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Connect runs one upgraded connection to completion. It mints the
// session identity, opens the merged topic feed, restores the user's
// prior subscriptions, registers the user and blocks until the
// connection's tasks finish. The caller has already claimed a capacity
// slot; Connect releases it on every path.
func (g *Gateway) Connect(ctx context.Context, conn *websocket.Conn, name, remoteAddr string) {
	key, err := randx.UserKey()
	if err != nil {
		g.logger.Error().Err(err).Msg("Error minting user key")
		conn.Close()
		g.Release()
		return
	}
	sessionID := randx.SessionID()

	topics := append([]string{key}, DefaultTopics...)
	feed, err := g.bus.Feed(ctx, topics...)
	if err != nil {
		g.logger.Error().Err(err).Str("name", name).Msg("Error opening topic feed")
		conn.Close()
		g.Release()
		return
	}

	if err := feed.PSubscribe(ctx, SystemTopicPattern); err != nil {
		g.logger.Error().Err(err).Str("name", name).Msg("Error subscribing to system topics")
		feed.Close()
		conn.Close()
		g.Release()
		return
	}

	u := user.New(name, sessionID, key, feed, DefaultTopics...)
	u.RemoteAddr = remoteAddr

	g.resumeTopics(ctx, u)

	g.registry.Add(u)

	logger := g.logger.With().
		Str("name", name).
		Str("session_id", sessionID).
		Logger()
	logger.Info().Str("remote_addr", remoteAddr).Int64("active", g.Active()).Msg("User connected")

	cleanup := func() {
		if err := g.registry.Remove(sessionID, ""); err != nil {
			logger.Warn().Err(err).Msg("Error removing user from registry")
		}
		feed.Close()
		g.Release()
		logger.Info().Int64("active", g.Active()).Msg("User disconnected")
	}

	client := NewClient(conn, u, g.router, logger, cleanup)
	client.Run(ctx)
}

// resumeTopics re-subscribes the user to topics recorded from earlier
// sessions. Resume failures degrade to a fresh subscription set.
func (g *Gateway) resumeTopics(ctx context.Context, u *user.User) {
	prior, err := g.bus.UserTopics(ctx, u.Name)
	if err != nil {
		g.logger.Warn().Err(err).Str("name", u.Name).Msg("Error loading prior topics")
		return
	}

	for _, topic := range prior {
		if u.Subscribed(topic) {
			continue
		}
		if err := u.Feed().Subscribe(ctx, topic); err != nil {
			g.logger.Warn().Err(err).Str("topic", topic).Msg("Error resuming topic")
			continue
		}
		u.AddTopic(topic)
	}
}
