package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/markup"
	"github.com/alimasry/go-styled-editor/store"
)

type joinRequest struct {
	client *Client
	docID  string
}

// Hub manages document sessions and routes clients to the right session.
type Hub struct {
	store    store.DocumentStore
	seed     string
	log      *logrus.Entry
	sessions map[string]*Session
	mu       sync.RWMutex

	joinDoc chan joinRequest
}

// NewHub creates a hub over st. Documents that do not exist yet are
// created with seed as their initial markup.
func NewHub(st store.DocumentStore, seed string, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		store:    st,
		seed:     seed,
		log:      log.WithField("component", "hub"),
		sessions: make(map[string]*Session),
		joinDoc:  make(chan joinRequest, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for req := range h.joinDoc {
		h.handleJoinDoc(req)
	}
}

func (h *Hub) handleJoinDoc(req joinRequest) {
	if req.client.isDisconnected() {
		return
	}
	if req.docID == "" {
		req.client.sendError("join: missing docId")
		return
	}
	s, err := h.session(context.Background(), req.docID)
	if err != nil {
		h.log.WithError(err).WithField("doc", req.docID).Error("open session failed")
		req.client.sendError("failed to load document")
		return
	}
	s.join <- req.client
}

// session returns the running session of docID, starting one from the
// stored snapshot if needed.
func (h *Hub) session(ctx context.Context, docID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[docID]; ok {
		return s, nil
	}

	info, err := h.store.Get(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		if err := h.store.Create(ctx, docID, h.seed); err != nil && !errors.Is(err, store.ErrExists) {
			return nil, err
		}
		info, err = h.store.Get(ctx, docID)
	}
	if err != nil {
		return nil, err
	}

	root, err := markup.FromMarkup(info.Content)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", docID, err)
	}
	d := doc.NewDocument(markup.NewSchema(), root)
	d.Version = info.Version

	s := newSession(docID, d, h.store, h.log.Logger.WithField("component", "session"))
	h.sessions[docID] = s
	go s.Run()
	h.log.WithFields(logrus.Fields{"doc": docID, "version": info.Version}).Info("session started")
	return s, nil
}

// GetSession returns the session for a document, if active.
func (h *Hub) GetSession(docID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[docID]
}

// Markup returns the current markup of docID: the live session's state if
// one is running, otherwise the stored snapshot.
func (h *Hub) Markup(ctx context.Context, docID string) (string, int, error) {
	if s := h.GetSession(docID); s != nil {
		return s.Snapshot(ctx)
	}
	info, err := h.store.Get(ctx, docID)
	if err != nil {
		return "", 0, err
	}
	return info.Content, info.Version, nil
}

// Close stops every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.Close()
		delete(h.sessions, id)
	}
}
