package replay

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, err := store.Load(ctx, "s:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}

	body := []byte("answer")
	if err := store.Save(ctx, "s:1", body); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	body[0] = 'X'

	got, err := store.Load(ctx, "s:1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "answer" {
		t.Fatalf("Load() = %q, stored bytes must not alias the caller's", got)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	got, err := Key(" s-9 ", 4)
	if err != nil || got != "s-9:4" {
		t.Fatalf("Key() = %q, %v", got, err)
	}
	if _, err := Key("", 1); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Key(empty) error = %v", err)
	}
}
