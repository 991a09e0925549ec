package store

import (
	"context"
	"errors"
	"time"

	"github.com/alimasry/go-styled-editor/doc"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// DocumentInfo holds a document's markup snapshot and metadata.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"` // markup
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentStore keeps markup snapshots and the transaction log of the
// editing service. Implementations: MemoryStore, FirestoreStore, and
// CachedStore in front of either.
type DocumentStore interface {
	Create(ctx context.Context, id, content string) error
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	List(ctx context.Context) ([]DocumentInfo, error)
	UpdateContent(ctx context.Context, id, content string, version int) error
	AppendTransaction(ctx context.Context, id string, tx doc.Transaction, version int) error
	GetTransactions(ctx context.Context, id string, fromVersion int) ([]doc.Transaction, error)
}
