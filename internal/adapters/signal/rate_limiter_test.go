package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommandRateLimiter(t *testing.T) {
	req := require.New(t)
	now := time.Unix(1000, 0)
	rl := NewCommandRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("x"))
	req.True(rl.Allow("x"))
	req.False(rl.Allow("x"))
	req.True(rl.Allow("y"))

	now = now.Add(1500 * time.Millisecond)
	req.True(rl.Allow("x"))

	rl.Forget("x")
	req.True(rl.Allow("x"))
	req.True(rl.Allow("x"))
	req.False(rl.Allow("x"))
}
