package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyMutex_SerializesSameKey(t *testing.T) {
	req := require.New(t)
	km := NewKeyMutex()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("msg:1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	req.Equal(100, counter)
	req.Zero(km.Len())
}

func TestKeyMutex_DifferentKeysIndependent(t *testing.T) {
	req := require.New(t)
	km := NewKeyMutex()

	unlockA := km.Lock("msg:a")
	done := make(chan struct{})
	go func() {
		unlock := km.Lock("msg:b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("lock on a different key blocked")
	}
	unlockA()
}

func TestKeyMutex_LockAll_NoDeadlockOnReversedOrder(t *testing.T) {
	km := NewKeyMutex()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			km.LockAll("call:x", "call:y")()
		}()
		go func() {
			defer wg.Done()
			km.LockAll("call:y", "call:x", "call:y")()
		}()
	}
	wg.Wait()
	require.Zero(t, km.Len())
}
