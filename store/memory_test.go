package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alimasry/go-styled-editor/doc"
)

func styleTx(pos int, id string) doc.Transaction {
	return doc.Transaction{Steps: []doc.Step{doc.SetAttr(pos, "style", id)}}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, "doc1", "<p>hello</p>"); err != nil {
		t.Fatal(err)
	}

	info, err := s.Get(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if info.Content != "<p>hello</p>" || info.Version != 0 || info.ID != "doc1" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "doc1", "")
	if err := s.Create(ctx, "doc1", ""); !errors.Is(err, ErrExists) {
		t.Errorf("err = %v, want ErrExists", err)
	}
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "c", "")
	s.Create(ctx, "a", "")
	s.Create(ctx, "b", "")

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	for i, id := range []string{"a", "b", "c"} {
		if docs[i].ID != id {
			t.Errorf("docs[%d] = %q, want %q", i, docs[i].ID, id)
		}
	}
}

func TestMemoryStore_UpdateContent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "doc1", "<p>hello</p>")
	want := `<p data-style="quote" class="paragraph-quote">hello</p>`
	if err := s.UpdateContent(ctx, "doc1", want, 1); err != nil {
		t.Fatal(err)
	}

	info, _ := s.Get(ctx, "doc1")
	if info.Content != want || info.Version != 1 {
		t.Errorf("unexpected: content=%q version=%d", info.Content, info.Version)
	}

	if err := s.UpdateContent(ctx, "nope", "", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Transactions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "doc1", "<p>a</p>")

	if err := s.AppendTransaction(ctx, "doc1", styleTx(0, "info"), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendTransaction(ctx, "doc1", styleTx(0, "code"), 2); err != nil {
		t.Fatal(err)
	}

	txs, err := s.GetTransactions(ctx, "doc1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}

	txs, err = s.GetTransactions(ctx, "doc1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Steps[0].Value != "code" {
		t.Fatalf("from version 1: got %+v", txs)
	}

	if _, err := s.GetTransactions(ctx, "doc1", 3); err == nil {
		t.Error("expected error for version past the log")
	}
}

func TestMemoryStore_TransactionsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetTransactions(context.Background(), "nope", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
