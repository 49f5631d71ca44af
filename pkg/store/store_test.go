package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
)

// testStore runs the shared Store contract against s.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	older := document.New("older", flow.Center).Add("a", 10, 20)
	older.CreatedAt = time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	newer := &document.Document{Name: "newer", Alignment: flow.TopTrailing}
	newer.Add("x", 1, 1).Add("y", 2, 2)

	for _, d := range []*document.Document{older, newer} {
		if err := s.Put(ctx, d); err != nil {
			t.Fatalf("Put(%s) error: %v", d.Name, err)
		}
	}
	if newer.ID == "" || newer.CreatedAt.IsZero() {
		t.Fatal("Put should assign an id and creation time")
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "older" || got.Alignment != flow.Center || len(got.Boxes) != 1 || got.Boxes[0].Height != 20 {
		t.Errorf("Get = %+v", got)
	}

	list, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[0].Boxes != 2 || list[1].ID != older.ID {
		t.Errorf("List = %+v, want newest first", list)
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) returned %d summaries", len(list))
	}

	older.Name = "renamed"
	if err := s.Put(ctx, older); err != nil {
		t.Fatalf("Put(replace) error: %v", err)
	}
	if got, _ := s.Get(ctx, older.ID); got == nil || got.Name != "renamed" {
		t.Errorf("Put should replace existing documents, got %+v", got)
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Get after Delete error = %v, want DOCUMENT_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, older.ID); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Delete(missing) error = %v, want DOCUMENT_NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(bad id) error = %v, want INVALID_INPUT", err)
	}

	bad := &document.Document{Boxes: []document.BoxSpec{{Width: -1}}}
	if err := s.Put(ctx, bad); err == nil {
		t.Error("Put should validate documents")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := document.New("copy", flow.TopLeading).Add("a", 1, 1)
	if err := s.Put(ctx, d); err != nil {
		t.Fatal(err)
	}
	d.Boxes[0].Width = 99
	got, _ := s.Get(ctx, d.ID)
	if got.Boxes[0].Width != 1 {
		t.Error("MemoryStore should copy documents on Put")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "layouts"))
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background(), 0)
	if err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v; want empty", list, err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q", s.Path())
	}
	id := uuid.NewString()
	if _, err := s.Get(context.Background(), id); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
}

// TestMongoStore runs against a live server when REFLOW_MONGO_URI is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("REFLOW_MONGO_URI")
	if uri == "" {
		t.Skip("REFLOW_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "reflow_test",
		Collection: "layouts_" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoStore error: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}
