package browser

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joestar-dev/joestar/pkg/joerr"
	"github.com/joestar-dev/joestar/pkg/protocol"
	"github.com/joestar-dev/joestar/pkg/view"
)

// Surface is one view served to any number of browser tabs.
type Surface struct {
	id     string
	spec   view.Spec
	sink   view.Sink
	driver *Driver

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// ID returns the view id used in the surface's URL.
func (s *Surface) ID() string {
	return s.id
}

// Path returns the URL path of the surface's page.
func (s *Surface) Path() string {
	return "/views/" + s.id
}

// Transport implements view.Surface.
func (s *Surface) Transport() string {
	return transportScript
}

// Load implements view.Surface. Connected tabs reload; the page they fetch
// is rendered from the view's current document.
func (s *Surface) Load(string) error {
	return s.Apply(protocol.Instruction{Op: protocol.OpEval, Value: "location.reload();"})
}

// Apply implements view.Surface. With no tab connected the instruction is
// dropped; a tab that connects later is sent the current document.
func (s *Surface) Apply(ins protocol.Instruction) error {
	msg, err := ins.Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &joerr.SurfaceError{Op: "apply", Err: joerr.ErrViewClosed}
	}
	for c := range s.clients {
		if !c.enqueue(msg) {
			s.driver.logger.Warn("send queue full, dropping connection", "view_id", s.id)
			delete(s.clients, c)
			go c.closeWith(websocket.CloseGoingAway, "send queue full")
		}
	}
	return nil
}

// Close implements view.Surface. Connected tabs are disconnected.
func (s *Surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	clear(s.clients)
	s.mu.Unlock()

	s.driver.forget(s.id)
	for _, c := range clients {
		c.closeWith(websocket.CloseNormalClosure, "view closed")
	}
	return nil
}

// Clients returns the number of connected tabs.
func (s *Surface) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// attach registers c and queues a fill with the current document, so
// instructions applied between the page load and the socket opening are
// not lost. Holding mu orders the fill before any later Apply.
func (s *Surface) attach(c *client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	msg, err := protocol.Instruction{Op: protocol.OpFill, HTML: s.sink.Markup()}.Encode()
	if err != nil {
		return false, err
	}
	c.enqueue(msg)
	s.clients[c] = struct{}{}
	return true, nil
}

func (s *Surface) detach(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// client is one socket connection to a surface.
type client struct {
	surface *Surface
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func newClient(s *Surface, conn *websocket.Conn) *client {
	return &client{
		surface: s,
		conn:    conn,
		send:    make(chan []byte, s.driver.config.SendQueue),
		done:    make(chan struct{}),
	}
}

func (c *client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// readLoop forwards inbound messages to the view until the connection
// fails or closes.
func (c *client) readLoop() {
	cfg := c.surface.driver.config
	logger := c.surface.driver.logger
	defer func() {
		c.surface.detach(c)
		c.shutdown()
		cfg.Metrics.Disconnected()
	}()

	c.conn.SetReadLimit(protocol.MaxMessageSize)
	deadline := 2 * cfg.HeartbeatInterval
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				logger.Error("read error", "view_id", c.surface.id, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(deadline))

		if err := c.surface.sink.Deliver(msg); err != nil {
			logger.Warn("event not delivered", "view_id", c.surface.id, "error", err)
		}
	}
}

// writeLoop sends queued instructions and heartbeats.
func (c *client) writeLoop() {
	cfg := c.surface.driver.config
	logger := c.surface.driver.logger
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("write error", "view_id", c.surface.id, "error", err)
				c.shutdown()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			return
		}
	}
}

// closeWith sends a close frame and tears the connection down.
func (c *client) closeWith(code int, reason string) {
	deadline := time.Now().Add(c.surface.driver.config.WriteTimeout)
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	c.shutdown()
}

func (c *client) shutdown() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
