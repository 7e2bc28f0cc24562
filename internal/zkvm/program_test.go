package zkvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramKeyIsStableAcrossCalls(t *testing.T) {
	keyFn := ProgramKeyFunc(Image{1, 2, 3}, Keccak256Deriver{})

	first := keyFn()
	second := keyFn()
	require.Equal(t, first, second)
	require.Regexp(t, "^0x[0-9a-f]{64}$", first)
}

func TestProgramKeyDiffersByImage(t *testing.T) {
	a := ProgramKeyFunc(Image{1}, Keccak256Deriver{})()
	b := ProgramKeyFunc(Image{2}, Keccak256Deriver{})()
	require.NotEqual(t, a, b)
}
