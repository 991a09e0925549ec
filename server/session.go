package server

import (
	"context"
	"errors"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/markup"
	"github.com/alimasry/go-styled-editor/store"
)

var errSessionClosed = errors.New("session closed")

type clientMessage struct {
	client *Client
	msg    ClientMessage
}

type snapshot struct {
	markup  string
	version int
	err     error
}

// Session manages editing of a single document.
// All events are serialized through a single goroutine.
type Session struct {
	docID  string
	ed     *doc.Editor
	engine *editor.Engine
	store  store.DocumentStore
	log    *logrus.Entry

	clients map[*Client]bool
	order   []*Client // join order; the writer role passes down this list
	writer  *Client

	// markup of the document at cachedVersion
	cached        string
	cachedVersion int

	incoming chan clientMessage
	join     chan *Client
	leave    chan *Client
	queries  chan chan snapshot
	stop     chan struct{}
}

func newSession(docID string, d *doc.Document, st store.DocumentStore, log *logrus.Entry) *Session {
	ed := doc.NewEditor(d)
	s := &Session{
		docID:         docID,
		ed:            ed,
		store:         st,
		log:           log.WithField("doc", docID),
		clients:       make(map[*Client]bool),
		cachedVersion: -1,
		incoming:      make(chan clientMessage, 64),
		join:          make(chan *Client, 16),
		leave:         make(chan *Client, 16),
		queries:       make(chan chan snapshot),
		stop:          make(chan struct{}),
	}
	s.engine = editor.NewEngine(doc.NewHost(ed))
	s.engine.OnRender(s.broadcastState)
	ed.Subscribe(s.persist)
	return s
}

// Run is the session's main loop. It serializes all events.
func (s *Session) Run() {
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case cm := <-s.incoming:
			s.handleMessage(cm)
		case reply := <-s.queries:
			content, err := s.markup()
			reply <- snapshot{markup: content, version: s.ed.Version(), err: err}
		case <-s.stop:
			return
		}
	}
}

// Close stops the session loop.
func (s *Session) Close() {
	close(s.stop)
}

// Snapshot returns the current markup and version, read from the session
// goroutine.
func (s *Session) Snapshot(ctx context.Context) (string, int, error) {
	reply := make(chan snapshot, 1)
	select {
	case s.queries <- reply:
	case <-s.stop:
		return "", 0, errSessionClosed
	case <-ctx.Done():
		return "", 0, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.markup, r.version, r.err
	case <-ctx.Done():
		return "", 0, ctx.Err()
	}
}

func (s *Session) handleJoin(c *Client) {
	switch err := c.attach(s); {
	case errors.Is(err, errDisconnected):
		s.log.WithField("client", c.ID).Debug("dropped join of disconnected client")
		return
	case err != nil:
		c.sendError(err.Error())
		return
	}
	s.clients[c] = true
	s.order = append(s.order, c)
	role := RoleViewer
	if s.writer == nil {
		s.writer = c
		role = RoleWriter
	}

	content, err := s.markup()
	if err != nil {
		s.log.WithError(err).Error("render markup failed")
		c.sendError("failed to render document")
		return
	}
	vs := s.engine.State()
	sel := s.ed.Selection()
	c.sendMsg(ServerMessage{
		Type:         MsgDoc,
		DocID:        s.docID,
		Role:         role,
		Revision:     s.ed.Version(),
		Content:      content,
		Decorations:  vs.Decorations,
		CurrentStyle: vs.CurrentStyle,
		Selection:    &sel,
		Styles:       s.engine.Styles(),
		Clients:      s.clientInfos(),
	})
	s.log.WithFields(logrus.Fields{"client": c.ID, "role": role}).Info("client joined")

	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
				Color:    c.Color,
				Role:     role,
			})
		}
	}
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	s.order = slices.DeleteFunc(s.order, func(o *Client) bool { return o == c })
	c.detach()
	close(c.send)
	s.log.WithField("client", c.ID).Info("client left")

	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}

	if c != s.writer {
		return
	}
	s.writer = nil
	if len(s.order) > 0 {
		s.writer = s.order[0]
		s.writer.sendMsg(ServerMessage{Type: MsgRole, DocID: s.docID, Role: RoleWriter, Revision: s.ed.Version()})
		s.log.WithField("client", s.writer.ID).Info("writer role handed over")
	}
}

func (s *Session) handleMessage(cm clientMessage) {
	if cm.client != s.writer {
		cm.client.sendError("read-only: only the writer may send " + cm.msg.Type)
		return
	}

	before := s.ed.Version()
	var (
		applied bool
		err     error
	)
	switch cm.msg.Type {
	case MsgSelect:
		err = s.ed.Select(doc.Selection{Anchor: cm.msg.Anchor, Head: cm.msg.Head})
		applied = err == nil
	case MsgSetStyle:
		applied, err = s.engine.SetStyle(cm.msg.Style)
	case MsgEdit:
		err = s.ed.Dispatch(doc.Transaction{Steps: cm.msg.Steps})
		applied = err == nil && s.ed.Version() != before
	case MsgLoad:
		var root *doc.Node
		root, err = markup.FromMarkup(markup.Sanitize(cm.msg.Markup))
		if err == nil {
			err = s.ed.Dispatch(doc.Transaction{Steps: []doc.Step{doc.Replace(root)}})
		}
		applied = err == nil && s.ed.Version() != before
	default:
		cm.client.sendError("unknown message type: " + cm.msg.Type)
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("type", cm.msg.Type).Warn("rejected message")
		cm.client.sendError(cm.msg.Type + ": " + err.Error())
		return
	}

	cm.client.sendMsg(ServerMessage{
		Type:     MsgAck,
		Revision: s.ed.Version(),
		Applied:  applied,
	})
}

// broadcastState sends the view state after a change to every client.
func (s *Session) broadcastState(vs editor.ViewState) {
	content, err := s.markup()
	if err != nil {
		s.log.WithError(err).Error("render markup failed")
		return
	}
	sel := s.ed.Selection()
	msg := ServerMessage{
		Type:         MsgState,
		DocID:        s.docID,
		Revision:     s.ed.Version(),
		Content:      content,
		Decorations:  vs.Decorations,
		CurrentStyle: vs.CurrentStyle,
		Selection:    &sel,
	}
	for c := range s.clients {
		c.sendMsg(msg)
	}
}

// persist writes the committed transaction and the new snapshot.
func (s *Session) persist(c doc.Change) {
	if !c.DocChanged {
		return
	}
	content, err := s.markup()
	if err != nil {
		s.log.WithError(err).Error("render markup failed")
		return
	}
	history := s.ed.Document().History
	tx := history[len(history)-1]

	ctx := context.Background()
	log := s.log.WithField("version", c.Version)
	if err := s.store.AppendTransaction(ctx, s.docID, tx, c.Version); err != nil {
		log.WithError(err).Error("append transaction failed")
	}
	if err := s.store.UpdateContent(ctx, s.docID, content, c.Version); err != nil {
		log.WithError(err).Error("update content failed")
	}
}

// markup renders the current document, reusing the last rendering while
// the version is unchanged.
func (s *Session) markup() (string, error) {
	if v := s.ed.Version(); v != s.cachedVersion {
		content, err := markup.ToMarkup(s.ed.Root())
		if err != nil {
			return "", err
		}
		s.cached, s.cachedVersion = content, v
	}
	return s.cached, nil
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.order))
	for _, c := range s.order {
		info := c.Info()
		info.Role = RoleViewer
		if c == s.writer {
			info.Role = RoleWriter
		}
		infos = append(infos, info)
	}
	return infos
}
