package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresenceKey(t *testing.T) {
	require.Equal(t, "im:presence:u1", presenceKey("u1"))
}

func TestNewRedisMirrorUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisMirror(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
