package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alimasry/go-styled-editor/store"
	"github.com/alimasry/go-styled-editor/style"
)

func setupTestServer(t *testing.T, seed string) (*httptest.Server, *Hub) {
	t.Helper()
	st := store.NewMemoryStore()
	hub := NewHub(st, seed, quietLogger())
	go hub.Run()
	server := httptest.NewServer(NewHandler(hub, t.TempDir()))
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return server, hub
}

func wsConnect(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWsMsg(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestHandler_WebSocketConnect(t *testing.T) {
	server, _ := setupTestServer(t, DemoContent)
	conn := wsConnect(t, server)

	if err := conn.WriteJSON(ClientMessage{Type: MsgJoin, DocID: "test-doc"}); err != nil {
		t.Fatal(err)
	}

	resp := readWsMsg(t, conn)
	if resp.Type != MsgDoc {
		t.Fatalf("expected doc, got %q", resp.Type)
	}
	if resp.Role != RoleWriter {
		t.Errorf("role = %q, want %q", resp.Role, RoleWriter)
	}
	// One decoration per non-default demo paragraph.
	if len(resp.Decorations) != 6 {
		t.Errorf("got %d decorations, want 6", len(resp.Decorations))
	}
	if resp.CurrentStyle != style.Highlight {
		t.Errorf("currentStyle = %q, want %q", resp.CurrentStyle, style.Highlight)
	}
}

func TestHandler_WriterAndPreview(t *testing.T) {
	server, _ := setupTestServer(t, "<p>Hello</p>")
	conn1 := wsConnect(t, server)
	conn2 := wsConnect(t, server)

	conn1.WriteJSON(ClientMessage{Type: MsgJoin, DocID: "shared"})
	if doc1 := readWsMsg(t, conn1); doc1.Type != MsgDoc {
		t.Fatalf("c1 expected doc, got %q", doc1.Type)
	}

	conn2.WriteJSON(ClientMessage{Type: MsgJoin, DocID: "shared"})
	doc2 := readWsMsg(t, conn2)
	if doc2.Type != MsgDoc || doc2.Role != RoleViewer {
		t.Fatalf("c2 expected viewer doc, got %+v", doc2)
	}

	if notif := readWsMsg(t, conn1); notif.Type != MsgJoin {
		t.Fatalf("c1 expected join notification, got %q", notif.Type)
	}

	conn1.WriteJSON(ClientMessage{Type: MsgSetStyle, Style: "quote"})
	if state := readWsMsg(t, conn1); state.Type != MsgState {
		t.Fatalf("expected state, got %q", state.Type)
	}
	if ack := readWsMsg(t, conn1); ack.Type != MsgAck || !ack.Applied {
		t.Fatalf("expected applied ack, got %+v", ack)
	}

	preview := readWsMsg(t, conn2)
	want := `<p data-style="quote" class="paragraph-quote">Hello</p>`
	if preview.Type != MsgState || preview.Content != want {
		t.Errorf("preview = %+v, want content %q", preview, want)
	}
}

func TestHandler_NotJoined(t *testing.T) {
	server, _ := setupTestServer(t, "")
	conn := wsConnect(t, server)

	conn.WriteJSON(ClientMessage{Type: MsgSetStyle, Style: "quote"})
	if msg := readWsMsg(t, conn); msg.Type != MsgError {
		t.Errorf("expected error, got %q", msg.Type)
	}
}

func TestHandler_Styles(t *testing.T) {
	server, _ := setupTestServer(t, "")

	resp, err := http.Get(server.URL + "/api/styles")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var entries []style.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 7 || entries[0].ID != style.Default {
		t.Errorf("unexpected styles: %+v", entries)
	}
}

func TestHandler_Markup(t *testing.T) {
	server, hub := setupTestServer(t, "")
	if err := hub.store.Create(ctx(), "stored", `<p data-style="info" class="paragraph-info">x</p>`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"stored snapshot", "/api/docs/stored/markup", http.StatusOK, `<p data-style="info" class="paragraph-info">x</p>`},
		{"missing", "/api/docs/nope/markup", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.body == "" {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestHandler_MarkupFromLiveSession(t *testing.T) {
	server, _ := setupTestServer(t, "<p>live</p>")
	conn := wsConnect(t, server)

	conn.WriteJSON(ClientMessage{Type: MsgJoin, DocID: "live"})
	readWsMsg(t, conn)
	conn.WriteJSON(ClientMessage{Type: MsgSetStyle, Style: "success"})
	readWsMsg(t, conn) // state
	readWsMsg(t, conn) // ack

	resp, err := http.Get(server.URL + "/api/docs/live/markup")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if want := `<p data-style="success" class="paragraph-success">live</p>`; string(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	if v := resp.Header.Get("X-Document-Version"); v != "1" {
		t.Errorf("version header = %q, want 1", v)
	}
}

func TestHandler_ListDocs(t *testing.T) {
	server, hub := setupTestServer(t, "")
	hub.store.Create(ctx(), "b", "")
	hub.store.Create(ctx(), "a", "")

	resp, err := http.Get(server.URL + "/api/docs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var docs []store.DocumentInfo
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("unexpected docs: %+v", docs)
	}
}
