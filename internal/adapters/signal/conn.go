package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/core"
)

var errConnClosed = errors.New("connection closed")

// Conn wraps one websocket with a buffered outbound queue. A single writer
// goroutine drains the queue, which preserves per-connection send order;
// TrySend never blocks a handler.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	readLimit    int64
	writeTimeout time.Duration
	pongWait     time.Duration
	pingPeriod   time.Duration

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, readLimit int64, sendBuffer int, writeTimeout, pongWait, pingPeriod time.Duration) *Conn {
	return &Conn{
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		readLimit:    readLimit,
		writeTimeout: writeTimeout,
		pongWait:     pongWait,
		pingPeriod:   pingPeriod,
	}
}

func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.ws.Close()
}

// closeWith sends a close frame before tearing the socket down. Used for
// authentication failures, where the close code is the only response.
func (c *Conn) closeWith(code int, reason string) {
	deadline := time.Now().Add(c.writeTimeout)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	c.Close()
}

// writePump drains the send queue and keeps the peer alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(c.writeTimeout))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Str("module", "signal").Err(err).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump delivers inbound frames to handle until the peer goes away. It
// returns only when the connection is finished; the caller runs teardown
// after it.
func (c *Conn) readPump(handle func(data []byte)) {
	defer c.Close()

	c.ws.SetReadLimit(c.readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Str("module", "signal").Err(err).Msg("readPump read error")
			}
			return
		}
		handle(data)
	}
}
