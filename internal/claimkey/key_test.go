package claimkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAcceptsPrefixedAndBareHex(t *testing.T) {
	h := "0000000000000000000000000000000000000000000000000000000000000001"
	withPrefix, err := New("0x"+h, "0x"+h)
	require.NoError(t, err)

	bare, err := New(h, h)
	require.NoError(t, err)

	require.Equal(t, withPrefix, bare)
}

func TestNewRejectsBadLength(t *testing.T) {
	_, err := New("0x1234", "0x"+"00"+"00000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
}

func TestUserRequestID(t *testing.T) {
	k, err := New(
		"0xc62000000000000000000000000000000000000000000000000000000000561b",
		"0xb001000000000000000000000000000000000000000000000000000000005d5d",
	)
	require.NoError(t, err)
	require.Equal(t, "c6200000-b0010000", k.UserRequestID())
}

// Key isolation: K_a = (h1, h2) must be independent from K_b = (h2, h1).
func TestKeyOrderSensitive(t *testing.T) {
	h1 := "0x0000000000000000000000000000000000000000000000000000000000000001"
	h2 := "0x0000000000000000000000000000000000000000000000000000000000000002"

	ka, err := New(h1, h2)
	require.NoError(t, err)
	kb, err := New(h2, h1)
	require.NoError(t, err)

	require.NotEqual(t, ka.Bytes(), kb.Bytes())
	require.NotEqual(t, ka, kb)
}

func TestIsZero(t *testing.T) {
	var k Key
	require.True(t, k.IsZero())

	k, err := New(
		"0x0000000000000000000000000000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000000000000000000000000000000",
	)
	require.NoError(t, err)
	require.False(t, k.IsZero())
}
