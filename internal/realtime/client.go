package realtime

import (
	"time"

	"github.com/bhakti2406/local-service-finder/internal/config"

	"github.com/gorilla/websocket"
)

const maxInboundFrame = 512

// writePump drains the client's send channel onto the wire and keeps the
// connection alive with pings. It exits when the send channel closes or a
// write fails.
func writePump(conn *websocket.Conn, client *Client, cfg config.RealtimeConfig) {
	pingPeriod := cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames until the connection dies. Clients send
// messages over the HTTP API, so inbound frames are discarded; the pump exists
// to process pongs and detect closure.
func readPump(conn *websocket.Conn, cfg config.RealtimeConfig) {
	conn.SetReadLimit(maxInboundFrame)
	conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
