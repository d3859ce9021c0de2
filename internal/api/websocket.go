package api

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/markusressel/nvfancontrol/internal/ui"
)

const closeWriteTimeout = time.Second

var clientCounter atomic.Uint64

// wsClient is a connected websocket client. Only the goroutine serving the
// client writes to conn, everyone else asks it to stop via done.
type wsClient struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (c *wsClient) stop() {
	c.once.Do(func() { close(c.done) })
}

func (s *Service) registerWebsocketEndpoint(rest *echo.Echo) {
	rest.GET("/ws/", s.streamStatus)
}

// streamStatus sends every new status snapshot to the client until it disconnects
func (s *Service) streamStatus(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	client := &wsClient{conn: conn, done: make(chan struct{})}
	id := fmt.Sprintf("%s#%d", c.RealIP(), clientCounter.Add(1))
	s.clients.Set(id, client)
	ui.Debug("Websocket client %s connected", id)
	defer func() {
		s.clients.Remove(id)
		_ = conn.Close()
		ui.Debug("Websocket client %s disconnected", id)
	}()

	// the client never sends anything, reading is only needed to notice a close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		changed := s.store.Changed()
		if snapshot, ok := s.store.Get(); ok {
			if err := conn.WriteJSON(snapshot); err != nil {
				return nil
			}
		}
		select {
		case <-client.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(closeWriteTimeout))
			return nil
		case <-gone:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-changed:
		}
	}
}

// ClientCount returns the number of connected websocket clients
func (s *Service) ClientCount() int {
	return s.clients.Count()
}

// CloseClients asks all websocket clients to disconnect. The connections are
// closed asynchronously by their handlers.
func (s *Service) CloseClients() {
	for _, client := range s.clients.Items() {
		client.stop()
	}
}
