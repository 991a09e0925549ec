package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alimasry/go-styled-editor/doc"
)

// pending tracks what still has to reach the backing store for one document.
type pending struct {
	content bool // snapshot needs writing
	gen     int  // bumped on every snapshot write
	flushed int  // transactions already in the backing store
	created bool // created locally, not yet in the backing store
}

// CachedStore serves all reads and writes from memory and writes dirty
// documents to a backing store in the background.
type CachedStore struct {
	cache   *MemoryStore
	backing DocumentStore
	log     *logrus.Entry

	mu       sync.Mutex
	dirty    map[string]*pending
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewCachedStore starts a CachedStore that flushes to backing every
// interval. Close performs a final flush.
func NewCachedStore(backing DocumentStore, interval time.Duration, log *logrus.Logger) *CachedStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cs := &CachedStore{
		cache:    NewMemoryStore(),
		backing:  backing,
		log:      log.WithField("component", "cached-store"),
		dirty:    make(map[string]*pending),
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go cs.flushLoop()
	return cs
}

func (cs *CachedStore) Create(ctx context.Context, id, content string) error {
	if _, err := cs.backing.Get(ctx, id); err == nil {
		return fmt.Errorf("document %q: %w", id, ErrExists)
	}
	if err := cs.cache.Create(ctx, id, content); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.dirty[id] = &pending{content: true, created: true}
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	if info, err := cs.cache.Get(ctx, id); err == nil {
		return info, nil
	}
	if err := cs.load(ctx, id); err != nil {
		return nil, err
	}
	return cs.cache.Get(ctx, id)
}

// List delegates to the backing store, so documents created since the
// last flush are not listed.
func (cs *CachedStore) List(ctx context.Context) ([]DocumentInfo, error) {
	return cs.backing.List(ctx)
}

func (cs *CachedStore) UpdateContent(ctx context.Context, id, content string, version int) error {
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.UpdateContent(ctx, id, content, version); err != nil {
		return err
	}
	p := cs.markDirty(id)
	p.content = true
	p.gen++
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) AppendTransaction(ctx context.Context, id string, tx doc.Transaction, version int) error {
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	// A clean document has every transaction logged so far in the backing store.
	before := cs.cache.historyLen(id)
	if err := cs.cache.AppendTransaction(ctx, id, tx, version); err != nil {
		return err
	}
	cs.mu.Lock()
	if cs.dirty[id] == nil {
		cs.dirty[id] = &pending{flushed: before}
	}
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) GetTransactions(ctx context.Context, id string, fromVersion int) ([]doc.Transaction, error) {
	if _, err := cs.Get(ctx, id); err != nil {
		return nil, err
	}
	return cs.cache.GetTransactions(ctx, id, fromVersion)
}

// markDirty returns the pending state of id with cs.mu held. The caller
// must unlock.
func (cs *CachedStore) markDirty(id string) *pending {
	flushed := cs.cache.historyLen(id)
	cs.mu.Lock()
	p := cs.dirty[id]
	if p == nil {
		p = &pending{flushed: flushed}
		cs.dirty[id] = p
	}
	return p
}

// load copies a document and its log from the backing store into the cache.
func (cs *CachedStore) load(ctx context.Context, id string) error {
	info, err := cs.backing.Get(ctx, id)
	if err != nil {
		return err
	}
	txs, err := cs.backing.GetTransactions(ctx, id, 0)
	if err != nil {
		return err
	}

	cs.cache.mu.Lock()
	if _, exists := cs.cache.docs[id]; !exists {
		cs.cache.docs[id] = &docRecord{info: *info, history: txs}
	}
	cs.cache.mu.Unlock()
	return nil
}

func (cs *CachedStore) flushLoop() {
	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()
	defer close(cs.done)

	for {
		select {
		case <-ticker.C:
			cs.Flush(context.Background())
		case <-cs.stop:
			cs.Flush(context.Background())
			return
		}
	}
}

// Flush writes every dirty document to the backing store and returns the
// number of documents that failed. Failed documents stay dirty and are
// retried on the next flush.
func (cs *CachedStore) Flush(ctx context.Context) int {
	cs.mu.Lock()
	snapshot := make(map[string]pending, len(cs.dirty))
	for id, p := range cs.dirty {
		snapshot[id] = *p
	}
	cs.mu.Unlock()

	failed := 0
	for id, p := range snapshot {
		if !cs.flushDoc(ctx, id, &p) {
			failed++
		}
		cs.settle(id, p)
	}
	return failed
}

// flushDoc writes one document. Transactions go first so the backing log
// is never behind its snapshot. p is updated with what was written.
func (cs *CachedStore) flushDoc(ctx context.Context, id string, p *pending) bool {
	cs.cache.mu.RLock()
	rec, ok := cs.cache.docs[id]
	if !ok {
		cs.cache.mu.RUnlock()
		return true
	}
	info := rec.info
	var txs []doc.Transaction
	if p.flushed < len(rec.history) {
		txs = append(txs, rec.history[p.flushed:]...)
	}
	cs.cache.mu.RUnlock()

	log := cs.log.WithField("doc", id)
	if p.created {
		if err := cs.backing.Create(ctx, id, ""); err != nil {
			log.WithError(err).Warn("create in backing store failed")
			return false
		}
		p.created = false
	}

	for _, tx := range txs {
		version := p.flushed + 1
		if err := cs.backing.AppendTransaction(ctx, id, tx, version); err != nil {
			log.WithError(err).WithField("version", version).Warn("flush transaction failed")
			return false
		}
		p.flushed++
	}

	if p.content {
		if err := cs.backing.UpdateContent(ctx, id, info.Content, info.Version); err != nil {
			log.WithError(err).Warn("flush snapshot failed")
			return false
		}
		p.content = false
	}
	log.WithFields(logrus.Fields{"version": info.Version, "transactions": len(txs)}).Debug("flushed")
	return true
}

// settle merges the result of a flush into the live dirty state and drops
// documents that became clean.
func (cs *CachedStore) settle(id string, p pending) {
	total := cs.cache.historyLen(id)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cur := cs.dirty[id]
	if cur == nil {
		return
	}
	cur.flushed = p.flushed
	cur.created = cur.created && p.created
	// A snapshot written during the flush bumped gen and stays dirty.
	if !p.content && cur.gen == p.gen {
		cur.content = false
	}
	if !cur.content && !cur.created && cur.flushed >= total {
		delete(cs.dirty, id)
	}
}

// Close stops the flush loop after a final flush.
func (cs *CachedStore) Close() {
	close(cs.stop)
	<-cs.done
}
