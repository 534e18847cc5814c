package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHashPool_HashAndVerify(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	ops := map[string]int{}
	pool := NewHashPool(fastArgon(), 2, WithHashObserver(func(op string, d time.Duration) {
		mu.Lock()
		ops[op]++
		mu.Unlock()
	}))

	h, err := pool.Hash(context.Background(), "secret")
	require.NoError(t, err)

	ok, err := pool.Verify(context.Background(), "secret", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pool.Verify(context.Background(), "nope", h)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, map[string]int{"hash": 1, "verify": 2}, ops)
}

func TestHashPool_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewHashPool(fastArgon(), 2)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := pool.Hash(context.Background(), "pw")
			if err != nil {
				errs <- err
				return
			}
			if ok, err := pool.Verify(context.Background(), "pw", h); err != nil || !ok {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHashPool_WaitHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewHashPool(fastArgon(), 1)

	// occupy the only slot
	require.NoError(t, pool.sem.Acquire(context.Background(), 1))
	defer pool.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.Hash(ctx, "pw")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = pool.Verify(ctx, "pw", pool.DummyHash())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHashPool_DummyHashReadyBeforeUse(t *testing.T) {
	alg := fastArgon()
	pool := NewHashPool(alg, 1)
	require.NotEmpty(t, alg.dummy)

	// with every slot taken the dummy hash is still served without hashing
	require.NoError(t, pool.sem.Acquire(context.Background(), 1))
	defer pool.sem.Release(1)
	assert.Equal(t, alg.dummy, pool.DummyHash())
}

func TestNewHashPool_ClampsWorkers(t *testing.T) {
	pool := NewHashPool(fastArgon(), 0)
	require.True(t, pool.sem.TryAcquire(1))
	assert.False(t, pool.sem.TryAcquire(1))
	pool.sem.Release(1)
}
