package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestTokenWakesPoll(t *testing.T) {
	tok, err := newToken()
	require.NoError(t, err)
	defer tok.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tok.Cancel()
	}()

	fds := []unix.PollFd{{Fd: int32(tok.r), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 5000)
		if err == unix.EINTR {
			continue
		}
		require.NoError(t, err)
		require.Equal(t, 1, n)
		break
	}
	assert.True(t, tok.Cancelled())

	tok.drain()
	n, err := unix.Poll(fds, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTokenCancelAfterClose(t *testing.T) {
	tok, err := newToken()
	require.NoError(t, err)

	tok.Close()
	tok.Close()
	tok.Cancel()
	assert.True(t, tok.Cancelled())
}
