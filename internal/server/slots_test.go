package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotsAdmitInOrder(t *testing.T) {
	s := newSlots(3)

	for want := 0; want < 3; want++ {
		i, ok := s.admit(100 + want)
		require.True(t, ok)
		require.Equal(t, want, i)
	}
	require.Equal(t, 3, s.used())

	_, ok := s.admit(200)
	require.False(t, ok)
}

func TestSlotsReuseReleased(t *testing.T) {
	s := newSlots(2)
	s.admit(10)
	s.admit(11)

	require.Equal(t, 10, s.release(0))
	require.Equal(t, -1, s.release(0))
	require.Equal(t, 1, s.used())

	i, ok := s.admit(12)
	require.True(t, ok)
	require.Equal(t, 0, i)
	require.Equal(t, 12, s.fd(0))
}
