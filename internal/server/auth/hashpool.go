package auth

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// PasswordHasher is the context-aware hasher the login and registration
// paths depend on.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, stored string) (bool, error)
	DummyHash() string
}

// HashObserver receives the duration of every hash ("hash") and verification
// ("verify") the pool runs.
type HashObserver func(op string, d time.Duration)

// HashPool bounds how many Argon2id computations run at once. Callers wait
// for a slot, giving up when their context ends; token checks never go
// through the pool, so a burst of logins cannot delay them.
type HashPool struct {
	alg     *Argon2id
	sem     *semaphore.Weighted
	observe HashObserver
	dummy   string
}

type HashPoolOption func(*HashPool)

func WithHashObserver(o HashObserver) HashPoolOption {
	return func(p *HashPool) { p.observe = o }
}

func NewHashPool(alg *Argon2id, workers int, opts ...HashPoolOption) *HashPool {
	if workers < 1 {
		workers = 1
	}
	p := &HashPool{
		alg:     alg,
		sem:     semaphore.NewWeighted(int64(workers)),
		observe: func(string, time.Duration) {},
	}
	for _, o := range opts {
		o(p)
	}
	// Computed here so unknown-user logins never hash outside the pool.
	p.dummy = alg.DummyHash()
	return p
}

func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	start := time.Now()
	defer func() { p.observe("hash", time.Since(start)) }()

	return p.alg.Hash(plaintext)
}

func (p *HashPool) Verify(ctx context.Context, plaintext, stored string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	start := time.Now()
	defer func() { p.observe("verify", time.Since(start)) }()

	return p.alg.Verify(plaintext, stored), nil
}

func (p *HashPool) DummyHash() string {
	return p.dummy
}
