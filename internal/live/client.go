package live

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Stream writes every snapshot of sub to conn until the subscription ends or
// the peer goes away. The subscription is cancelled and the connection closed
// on return. initial, when non-nil, is sent before any published snapshot.
func Stream(conn *websocket.Conn, sub *Subscription, initial *Snapshot, log zerolog.Logger) {
	done := make(chan struct{})
	go readPump(conn, done, log)
	writePump(conn, sub, initial, done)
}

// readPump only exists to process control frames and notice disconnects;
// clients never send data on a live stream.
func readPump(conn *websocket.Conn, done chan<- struct{}, log zerolog.Logger) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription, initial *Snapshot, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Cancel()
		conn.Close()
	}()

	if initial != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(initial); err != nil {
			return
		}
	}

	for {
		select {
		case snap, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if supersededBy(snap, initial) {
				continue
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// supersededBy reports whether snap was published no later than the initial
// state already sent, so sending it would roll the client back.
func supersededBy(snap Snapshot, initial *Snapshot) bool {
	return initial != nil && !snap.Timestamp.After(initial.Timestamp)
}
