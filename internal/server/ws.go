package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/desertthunder/domo/internal/hub"
)

const wsWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWS upgrades the connection and streams dashboard snapshots until
// the client disconnects or the sync loop shuts down. Each client gets its
// own buffered watcher; a client that stops reading misses snapshots and is
// eventually dropped by the write deadline instead of stalling the loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	watcher := s.loop.Subscribe()
	defer s.loop.Unsubscribe(watcher)

	// The read loop only notices disconnects; clients send nothing.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current state first so clients render without waiting for
	// the next cycle.
	if err := writeSnapshot(conn, s.loop.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap := <-watcher.Snapshots:
			if err := writeSnapshot(conn, snap); err != nil {
				s.logger.Debug("dropping websocket client", "error", err)
				return
			}
		case <-watcher.Done:
			deadline := time.Now().Add(wsWriteWait)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
			return
		case <-disconnected:
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap hub.Snapshot) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(snap)
}
