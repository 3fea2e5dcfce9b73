package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/internal/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Table is the part of *lobby.Lobby the stream needs.
type Table interface {
	Send(m lobby.Msg) bool
	View(ctx context.Context) (lobby.View, error)
}

// Handler streams table snapshots to a websocket peer. The stream is
// read-only: the only message a peer may send is GetView.
func Handler(table Table, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()

		if !table.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "table closed")
			return
		}
		defer table.Send(lobby.Leave{ClientID: clientID})
		logger.Debug("view client joined", zap.String("client_id", clientID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				if err := writeMessage(writeCtx, conn, types.Snapshot(snap)); err != nil {
					return
				}
			}
			// The table dropped us or shut down.
			conn.Close(websocket.StatusGoingAway, "stream ended")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					logger.Debug("view client read ended", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = writeMessage(r.Context(), conn, types.ErrorMessage("bad json"))
				continue
			}
			if cm.Type != types.MsgGetView {
				_ = writeMessage(r.Context(), conn, types.ErrorMessage("unknown type"))
				continue
			}

			v, err := table.View(r.Context())
			if err != nil {
				return
			}
			_ = writeMessage(r.Context(), conn, types.Snapshot(lobby.Snapshot{Version: v.Version, View: v}))
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
