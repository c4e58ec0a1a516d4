package app

import (
	"sync"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_LastWriterWins(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	first, _ := newConn("x")
	second, _ := newConn("x")

	evicted, ok := reg.Register(first)
	req.False(ok)
	req.Nil(evicted)

	evicted, ok = reg.Register(second)
	req.True(ok)
	req.Same(first, evicted)

	got, ok := reg.Lookup("x")
	req.True(ok)
	req.Same(second, got)
	req.Equal(1, reg.Len())
}

func TestRegistry_Unregister_StaleHandleIgnored(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	stale, _ := newConn("x")
	fresh, _ := newConn("x")
	reg.Register(stale)
	reg.Register(fresh)

	req.False(reg.Unregister("x", stale))
	req.True(reg.IsCurrent(fresh))

	req.True(reg.Unregister("x", fresh))
	req.False(reg.Unregister("x", fresh))
	_, ok := reg.Lookup("x")
	req.False(ok)
}

func TestRegistry_AtMostOneHandlePerUser(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, _ := newConn("x")
			reg.Register(c)
		}()
	}
	wg.Wait()

	req.Equal(1, reg.Len())
	req.Equal([]domain.UserID{"x"}, reg.Snapshot())
}
