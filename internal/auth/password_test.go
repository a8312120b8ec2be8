package auth

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(bcrypt.MinCost, 2)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !hasher.Verify(ctx, "correct horse battery", hash) {
		t.Fatalf("correct password rejected")
	}
	if hasher.Verify(ctx, "wrong password", hash) {
		t.Fatalf("wrong password accepted")
	}
	if hasher.Verify(ctx, "anything", []byte("not-a-bcrypt-hash")) {
		t.Fatalf("malformed hash accepted")
	}
}

func TestHasherRejectsBadCost(t *testing.T) {
	if _, err := NewHasher(bcrypt.MaxCost+1, 1); err == nil {
		t.Fatalf("expected error for out-of-range cost")
	}
}

func TestHasherHonorsCancellation(t *testing.T) {
	hasher, err := NewHasher(bcrypt.MinCost, 1)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}

	// Occupy the only slot so the next acquire must wait on the context.
	hasher.slots <- struct{}{}
	defer func() { <-hasher.slots }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := hasher.Hash(ctx, "pw"); err == nil {
		t.Fatalf("expected context error while gate is full")
	}
	if hasher.Verify(ctx, "pw", []byte("hash")) {
		t.Fatalf("verify succeeded while gate is full")
	}
}
