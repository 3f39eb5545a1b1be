package bridge

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

func TestGateConcurrentReaders(t *testing.T) {
	g := NewGate(ecs.NewWorld())
	var (
		inside  atomic.Int32
		peak    atomic.Int32
		release = make(chan struct{})
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.WithRead(func(*ecs.World) error {
				n := inside.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				inside.Add(-1)
				return nil
			})
		}()
	}
	require.Eventually(t, func() bool { return peak.Load() == 4 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
}

func TestGateWriterExcludesReaders(t *testing.T) {
	g := NewGate(ecs.NewWorld())
	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = g.WithWrite(func(*ecs.World) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	var read atomic.Bool
	done := make(chan struct{})
	go func() {
		_ = g.WithRead(func(*ecs.World) error {
			read.Store(true)
			return nil
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, read.Load(), "reader ran while writer held the gate")
	close(release)
	<-done
	assert.True(t, read.Load())
}

func TestGateReleasesOnError(t *testing.T) {
	g := NewGate(ecs.NewWorld())
	boom := errors.New("boom")
	assert.ErrorIs(t, g.WithWrite(func(*ecs.World) error { return boom }), boom)
	assert.NoError(t, g.WithWrite(func(*ecs.World) error { return nil }))
}

func TestGateReleasesOnPanic(t *testing.T) {
	g := NewGate(ecs.NewWorld())
	assert.Panics(t, func() {
		_ = g.WithWrite(func(*ecs.World) error { panic("boom") })
	})
	assert.Panics(t, func() {
		_ = g.WithRead(func(*ecs.World) error { panic("boom") })
	})
	assert.NoError(t, g.WithWrite(func(*ecs.World) error { return nil }))
}

func TestOperationsDoNotDeadlock(t *testing.T) {
	sw, _ := newTestWorld(t)
	tr := typeOf(t, sw, "Transform")
	done := make(chan struct{})
	go func() {
		defer close(done)
		p, c := sw.Spawn(), sw.Spawn()
		_ = sw.PushChild(p, c)
		dv, _ := sw.AddDefaultComponent(c, tr)
		scale, _ := dv.Field("Scale")
		_ = dv.SetField("Scale", scale)
		_ = sw.DespawnRecursive(p)
		_, _ = sw.Query(tr).Build()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested operation deadlocked on the gate")
	}
}
