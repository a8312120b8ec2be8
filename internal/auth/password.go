package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a bounded concurrency gate. Hashing is
// CPU-expensive on purpose; the gate keeps a burst of logins from pinning
// every core while unrelated requests starve.
type Hasher struct {
	cost  int
	slots chan struct{}
}

// NewHasher validates the cost factor up front. A bad cost is a fatal
// configuration error, never a per-request failure.
func NewHasher(cost, concurrency int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Hasher{cost: cost, slots: make(chan struct{}, concurrency)}, nil
}

// Hash derives a salted one-way hash of plaintext. The output embeds salt
// and cost, so verification needs no external parameters.
func (h *Hasher) Hash(ctx context.Context, plaintext string) ([]byte, error) {
	if err := h.acquire(ctx); err != nil {
		return nil, err
	}
	defer h.release()
	return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
}

// Verify reports whether plaintext matches hash. A wrong password and a
// malformed hash are indistinguishable to the caller; bcrypt's comparison
// is constant time.
func (h *Hasher) Verify(ctx context.Context, plaintext string, hash []byte) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.slots
}
