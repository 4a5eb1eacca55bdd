package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_Distinct(t *testing.T) {
	a := NewIdentity()
	b := NewIdentity()

	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())
	assert.True(t, Identity{}.IsZero())
	assert.Equal(t, "unknown", Identity{}.String())
}

func TestCurrent_UnknownOutsideDomain(t *testing.T) {
	id, ok := Current(context.Background())
	assert.False(t, ok)
	assert.True(t, id.IsZero())
}

func TestCurrent_MatchesInsideTask(t *testing.T) {
	l := quietLoop(t, "probe")

	done := make(chan struct{})
	var got Identity
	var ok bool
	require.NoError(t, l.Submit(context.Background(), func(ctx context.Context) {
		got, ok = Current(ctx)
		close(done)
	}))
	<-done

	require.True(t, ok, "probe must see the domain from inside a task")
	assert.Equal(t, l.Identity(), got)
}

func TestCurrent_TwoDomainsNeverConfused(t *testing.T) {
	a := quietLoop(t, "a")
	b := quietLoop(t, "b")

	done := make(chan struct{})
	var got Identity
	require.NoError(t, a.Submit(context.Background(), func(ctx context.Context) {
		got, _ = Current(ctx)
		close(done)
	}))
	<-done

	assert.Equal(t, a.Identity(), got)
	assert.NotEqual(t, b.Identity(), got)
}

func TestCurrent_StaleContextIsUnknown(t *testing.T) {
	l := quietLoop(t, "probe")

	// Leak the task's context past its completion. The probe must not
	// claim the domain for it afterwards: false negatives are a
	// performance cost, false positives are a correctness bug.
	ctxCh := make(chan context.Context, 1)
	require.NoError(t, l.Submit(context.Background(), func(ctx context.Context) {
		ctxCh <- ctx
	}))
	leaked := <-ctxCh

	// The task has returned once a later task can run.
	sync := make(chan struct{})
	require.NoError(t, l.Submit(context.Background(), func(context.Context) {
		close(sync)
	}))
	select {
	case <-sync:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stalled")
	}

	_, ok := Current(leaked)
	assert.False(t, ok, "stale context must probe as unknown")
}

func TestCurrent_ConcurrentProbesSafe(t *testing.T) {
	l := quietLoop(t, "probe")

	// Hold a task running while foreign goroutines probe their own
	// contexts. None may see the domain.
	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, l.Submit(context.Background(), func(ctx context.Context) {
		close(started)
		<-gate
	}))
	<-started

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func() {
			for i := 0; i < 1000; i++ {
				if _, ok := Current(context.Background()); ok {
					t.Error("foreign context probed as a domain")
					break
				}
			}
			done <- struct{}{}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	close(gate)
}
