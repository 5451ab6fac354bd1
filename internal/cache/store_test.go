package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	key := Key([]byte("class Foo {}"))
	if _, ok := s.Get(ctx, key); ok {
		t.Fatalf("unexpected hit for fresh key")
	}
	blob := []byte(`[{"name":"Foo"}]`)
	if err := s.Set(ctx, key, blob); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := s.Get(ctx, key)
	if !ok {
		t.Fatalf("expected hit")
	}
	if string(got) != string(blob) {
		t.Fatalf("got %q want %q", got, blob)
	}
}

func TestStore_KeyIsDeterministic(t *testing.T) {
	a := Key([]byte("same input"))
	b := Key([]byte("same input"))
	if a != b {
		t.Fatalf("hash mismatch: %s vs %s", a, b)
	}
	if a == Key([]byte("other input")) {
		t.Fatalf("distinct inputs collided")
	}
}

func TestStore_MissingFileIsMiss(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	key := Key([]byte("x"))
	if err := s.Set(ctx, key, []byte(`{}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Memory layer still holds it; a second store over the same root sees
	// only the disk, so deleting the file must read as a miss there.
	if err := os.Remove(filepath.Join(root, key+".json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	fresh, err := New(root, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := fresh.Get(ctx, key); ok {
		t.Fatalf("expected miss after file removal")
	}
}

func TestStore_MemoryLayerServesRepeatReads(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	key := Key([]byte("hot"))
	if err := s.Set(ctx, key, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Remove the backing file; the memory layer must still answer.
	if err := os.Remove(filepath.Join(root, key+".json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Get(ctx, key); !ok {
		t.Fatalf("memory layer did not serve the read")
	}
}
