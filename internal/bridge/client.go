package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pocket-arcade/internal/sensor"
)

// client is one connected pad. Every feed it sends into is attached on the
// first reading and detached when the connection ends.
type client struct {
	id     string
	conn   *websocket.Conn
	hub    *sensor.Hub
	logger *log.Logger
	detach map[string]func()
}

func newClient(conn *websocket.Conn, hub *sensor.Hub, logger *log.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:     id,
		conn:   conn,
		hub:    hub,
		logger: logger.With("client", id[:8]),
		detach: make(map[string]func()),
	}
}

func (c *client) run(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go c.keepAlive(ctx, done)

	c.logger.Info("pad connected")
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("pad read", "err", err)
			}
			return
		}
		// Readings may arrive faster than the pong deadline would require.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.handle(msg); err != nil {
			c.logger.Warn("pad dropped", "err", err)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "bad frame"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// keepAlive pings the pad and closes the connection when ctx ends.
func (c *client) keepAlive(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ctx.Done():
			_ = c.conn.Close()
			return
		case <-done:
			return
		}
	}
}

func (c *client) handle(msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}

	switch env.T {
	case MsgHello:
		hello, err := DecodePayload[Hello](env)
		if err != nil {
			return err
		}
		if hello.V != ProtocolVersion {
			return fmt.Errorf("bridge: unsupported protocol version %d", hello.V)
		}
		c.logger.Info("pad hello", "name", hello.Name)
		return c.send(MsgWelcome, Welcome{
			Client: c.id,
			Feeds:  []string{MsgMotion, MsgAudio, MsgFace},
			RateHz: sendRateHz,
		})
	case MsgMotion:
		m, err := DecodePayload[sensor.Motion](env)
		if err != nil {
			return err
		}
		c.attach(MsgMotion, c.hub.Motion.Attach)
		c.hub.Motion.Publish(m)
	case MsgAudio:
		a, err := DecodePayload[sensor.Audio](env)
		if err != nil {
			return err
		}
		c.attach(MsgAudio, c.hub.Loudness.Attach)
		c.hub.Loudness.Publish(a)
	case MsgFace:
		f, err := DecodePayload[sensor.Face](env)
		if err != nil {
			return err
		}
		c.attach(MsgFace, c.hub.Face.Attach)
		c.hub.Face.Publish(f)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadEnvelope, env.T)
	}
	return nil
}

func (c *client) attach(feed string, attach func() func()) {
	if _, ok := c.detach[feed]; ok {
		return
	}
	c.detach[feed] = attach()
	c.logger.Debug("feed attached", "feed", feed)
}

func (c *client) send(t string, payload any) error {
	b, err := Encode(t, payload)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("bridge: write %s: %w", t, err)
	}
	return nil
}

func (c *client) close() {
	for _, d := range c.detach {
		d()
	}
	_ = c.conn.Close()
	c.logger.Info("pad disconnected")
}
