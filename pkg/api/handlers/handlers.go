package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/repositories"
	"github.com/cbodonnell/goban/pkg/state"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const streamWriteTimeout = 5 * time.Second

type StatusResponse struct {
	*state.Snapshot
	CurrentPlayer string `json:"currentPlayer"`
	Checksum      string `json:"checksum"`
}

func HandleStatus(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get snapshot", http.StatusInternalServerError)
			return
		}
		board := state.NewBoardView(snapshot)
		writeJSON(w, StatusResponse{
			Snapshot:      snapshot,
			CurrentPlayer: board.CurrentPlayer,
			Checksum:      board.Checksum,
		})
	}
}

func HandleBoard(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get snapshot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, state.NewBoardView(snapshot))
	}
}

// HandleListDesyncs lists the desync reports of the running session.
func HandleListDesyncs(stateManager state.StateManager, repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repository == nil {
			http.Error(w, "Persistence is not enabled", http.StatusNotFound)
			return
		}
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get snapshot", http.StatusInternalServerError)
			return
		}
		reports, err := repository.ListDesyncReports(r.Context(), snapshot.SessionID)
		if err != nil {
			log.Error("failed to list desync reports: %v", err)
			http.Error(w, "Failed to list desync reports", http.StatusInternalServerError)
			return
		}
		writeJSON(w, reports)
	}
}

// HandleBoardStream upgrades to a websocket and sends the board every time a
// new snapshot is published, starting with the current one.
func HandleBoardStream(stateManager state.StateManager, allowOrigin string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := &websocket.AcceptOptions{}
		if allowOrigin == "*" {
			opts.InsecureSkipVerify = true
		} else if allowOrigin != "" {
			opts.OriginPatterns = []string{allowOrigin}
		}
		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			log.Error("failed to accept websocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")

		// reads are only needed to observe the close handshake
		ctx := conn.CloseRead(r.Context())
		updates := stateManager.Updates(ctx)

		lastFrame := int32(-1)
		send := func() error {
			snapshot, err := stateManager.Get(ctx)
			if err != nil {
				return err
			}
			if snapshot.Frame == lastFrame {
				return nil
			}
			lastFrame = snapshot.Frame
			writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			defer cancel()
			return wsjson.Write(writeCtx, conn, state.NewBoardView(snapshot))
		}

		if err := send(); err != nil {
			log.Debug("board stream closed: %v", err)
			return
		}
		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case _, ok := <-updates:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := send(); err != nil {
					if !errors.Is(err, context.Canceled) {
						log.Debug("board stream closed: %v", err)
					}
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
