package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "v" {
		t.Errorf("Value = %q, want %q", value, "v")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Delete, got %v", err)
	}
}

func TestMemStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	input := []byte("abc")
	if err := store.Set(ctx, "k", input); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	input[0] = 'X'

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Stored value mutated through input slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Stored value mutated through returned slice: %q", again)
	}
}
