package signals

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	ctx := Context()
	require.NoError(t, ctx.Err())
	require.Equal(t, ctx, Context())

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
