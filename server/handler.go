package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/alimasry/go-styled-editor/store"
	"github.com/alimasry/go-styled-editor/style"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHandler creates the HTTP handler with all routes. Static files are
// served from staticDir.
func NewHandler(hub *Hub, staticDir string) http.Handler {
	mux := http.NewServeMux()

	// Serve static files.
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /api/styles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, style.All())
	})

	mux.HandleFunc("GET /api/docs", func(w http.ResponseWriter, r *http.Request) {
		docs, err := hub.store.List(r.Context())
		if err != nil {
			hub.log.WithError(err).Error("list documents failed")
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		if docs == nil {
			docs = []store.DocumentInfo{}
		}
		writeJSON(w, docs)
	})

	mux.HandleFunc("GET /api/docs/{id}/markup", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		content, version, err := hub.Markup(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		if err != nil {
			hub.log.WithError(err).WithField("doc", id).Error("read markup failed")
			http.Error(w, "failed to read document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Document-Version", strconv.Itoa(version))
		w.Write([]byte(content))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
