package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alimasry/go-styled-editor/doc"
)

// FirestoreStore keeps snapshots in a "documents" collection and each
// document's transaction log in a "transactions" subcollection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) txCollection(docID string) *firestore.CollectionRef {
	return s.docRef(docID).Collection("transactions")
}

func zeroPad(version int) string {
	return fmt.Sprintf("%010d", version)
}

// translate maps Firestore status codes onto the store's sentinel errors.
func translate(id string, err error) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return fmt.Errorf("document %q: %w", id, ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("document %q: %w", id, ErrExists)
	}
	return fmt.Errorf("document %q: %w", id, err)
}

func (s *FirestoreStore) Create(ctx context.Context, id, content string) error {
	now := time.Now()
	_, err := s.docRef(id).Create(ctx, map[string]interface{}{
		"content":   content,
		"version":   0,
		"createdAt": now,
		"updatedAt": now,
	})
	return translate(id, err)
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	snap, err := s.docRef(id).Get(ctx)
	if err != nil {
		return nil, translate(id, err)
	}
	return snapshotToDocInfo(id, snap), nil
}

func snapshotToDocInfo(id string, snap *firestore.DocumentSnapshot) *DocumentInfo {
	data := snap.Data()
	content, _ := data["content"].(string)
	version, _ := data["version"].(int64)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	return &DocumentInfo{
		ID:        id,
		Content:   content,
		Version:   int(version),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	iter := s.client.Collection(s.collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var result []DocumentInfo
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		result = append(result, *snapshotToDocInfo(snap.Ref.ID, snap))
	}
	return result, nil
}

func (s *FirestoreStore) UpdateContent(ctx context.Context, id, content string, version int) error {
	_, err := s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: content},
		{Path: "version", Value: version},
		{Path: "updatedAt", Value: time.Now()},
	})
	return translate(id, err)
}

// AppendTransaction stores tx under a zero-padded 0-based index, so version
// 1 is entry 0 and GetTransactions(fromVersion) returns entries from
// fromVersion on, matching MemoryStore.
func (s *FirestoreStore) AppendTransaction(ctx context.Context, id string, tx doc.Transaction, version int) error {
	steps := make([]map[string]interface{}, len(tx.Steps))
	for i, st := range tx.Steps {
		m, err := stepToMap(st)
		if err != nil {
			return fmt.Errorf("encode transaction v%d of %q: %w", version, id, err)
		}
		steps[i] = m
	}
	_, err := s.txCollection(id).Doc(zeroPad(version-1)).Set(ctx, map[string]interface{}{
		"steps":   steps,
		"version": version,
	})
	return translate(id, err)
}

func (s *FirestoreStore) GetTransactions(ctx context.Context, id string, fromVersion int) ([]doc.Transaction, error) {
	if _, err := s.docRef(id).Get(ctx); err != nil {
		return nil, translate(id, err)
	}

	iter := s.txCollection(id).
		OrderBy(firestore.DocumentID, firestore.Asc).
		StartAt(zeroPad(fromVersion)).
		Documents(ctx)
	defer iter.Stop()

	var txs []doc.Transaction
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read transactions of %q: %w", id, err)
		}
		tx, err := snapshotToTransaction(snap)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func stepToMap(st doc.Step) (map[string]interface{}, error) {
	m := map[string]interface{}{
		"kind": string(st.Kind),
		"pos":  st.Pos,
	}
	if st.To != 0 {
		m["to"] = st.To
	}
	if st.Attr != "" {
		m["attr"] = st.Attr
		m["value"] = st.Value
	}
	if st.Text != "" {
		m["text"] = st.Text
	}
	if st.Node != nil {
		b, err := json.Marshal(st.Node)
		if err != nil {
			return nil, err
		}
		m["node"] = string(b)
	}
	return m, nil
}

func snapshotToTransaction(snap *firestore.DocumentSnapshot) (doc.Transaction, error) {
	raw, ok := snap.Data()["steps"].([]interface{})
	if !ok {
		return doc.Transaction{}, fmt.Errorf("invalid steps field in transaction %s", snap.Ref.ID)
	}

	steps := make([]doc.Step, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return doc.Transaction{}, fmt.Errorf("invalid step %d in transaction %s", i, snap.Ref.ID)
		}
		var st doc.Step
		if v, ok := m["kind"].(string); ok {
			st.Kind = doc.StepKind(v)
		}
		if v, ok := m["pos"].(int64); ok {
			st.Pos = int(v)
		}
		if v, ok := m["to"].(int64); ok {
			st.To = int(v)
		}
		st.Attr, _ = m["attr"].(string)
		st.Value, _ = m["value"].(string)
		st.Text, _ = m["text"].(string)
		if v, ok := m["node"].(string); ok {
			st.Node = new(doc.Node)
			if err := json.Unmarshal([]byte(v), st.Node); err != nil {
				return doc.Transaction{}, fmt.Errorf("decode node of step %d in transaction %s: %w", i, snap.Ref.ID, err)
			}
		}
		steps[i] = st
	}
	return doc.Transaction{Steps: steps}, nil
}
