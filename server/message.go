package server

import (
	"encoding/json"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/style"
)

// Message types exchanged over WebSocket.
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgSelect   = "select"
	MsgSetStyle = "setStyle"
	MsgEdit     = "edit"
	MsgLoad     = "load"
	MsgDoc      = "doc"
	MsgState    = "state"
	MsgRole     = "role"
	MsgAck      = "ack"
	MsgError    = "error"
)

// Session roles. Only the writer may change the document or selection.
const (
	RoleWriter = "writer"
	RoleViewer = "viewer"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type   string     `json:"type"`
	DocID  string     `json:"docId,omitempty"`
	Style  string     `json:"style,omitempty"`
	Anchor int        `json:"anchor"`
	Head   int        `json:"head"`
	Steps  []doc.Step `json:"steps,omitempty"`
	Markup string     `json:"markup,omitempty"`
}

// ServerMessage is a message from server to client. Content and
// Decorations are always encoded so an emptied document reads as "" and [].
type ServerMessage struct {
	Type         string              `json:"type"`
	DocID        string              `json:"docId,omitempty"`
	Role         string              `json:"role,omitempty"`
	Revision     int                 `json:"revision"`
	Content      string              `json:"content"`
	Decorations  []editor.Decoration `json:"decorations"`
	CurrentStyle style.ID            `json:"currentStyle,omitempty"`
	Selection    *doc.Selection      `json:"selection,omitempty"`
	Styles       []style.Entry       `json:"styles,omitempty"`
	Applied      bool                `json:"applied,omitempty"`
	ClientID     string              `json:"clientId,omitempty"`
	Name         string              `json:"name,omitempty"`
	Color        string              `json:"color,omitempty"`
	Message      string              `json:"message,omitempty"`
	Clients      []ClientInfo        `json:"clients,omitempty"`
}

// ClientInfo describes a connected user.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Role  string `json:"role"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
