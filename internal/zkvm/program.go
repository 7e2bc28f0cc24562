// Package zkvm models the embedded fault-proof program image and the
// out-of-scope zkVM runtime that executes it. The runtime itself (SP1 or
// equivalent) is an external collaborator; this package only owns the
// process-wide program_key derivation and the Executor interface used by
// the optional post-derivation sanity check.
package zkvm

import (
	"encoding/hex"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// Image is the embedded program binary the zkVM executes. It is supplied by
// the build (normally via go:embed over the compiled guest ELF); tests use a
// small fixed Image instead.
type Image []byte

// KeyDeriver computes the verification key digest for an Image. In
// production this wraps the zkVM SDK's setup/vkey computation; it is kept as
// an interface so this repo doesn't need to link the real zkVM toolchain.
type KeyDeriver interface {
	ProgramKey(Image) ([]byte, error)
}

// Keccak256Deriver is a stand-in KeyDeriver used when no real zkVM SDK is
// linked: it hashes the image with Keccak-256, the same primitive
// go-ethereum uses throughout (crypto.Keccak256) for content-addressing.
// Swap in the real SDK's KeyDeriver in production builds.
type Keccak256Deriver struct{}

func (Keccak256Deriver) ProgramKey(img Image) ([]byte, error) {
	return crypto.Keccak256(img), nil
}

// ProgramKeyFunc lazily and exactly once computes the hex-encoded
// verification key for image using deriver, matching the invariant that a
// given binary produces the same program_key on every start.
func ProgramKeyFunc(image Image, deriver KeyDeriver) func() string {
	var (
		once sync.Once
		key  string
	)
	return func() string {
		once.Do(func() {
			digest, err := deriver.ProgramKey(image)
			if err != nil {
				panic("zkvm: failed to derive program key: " + err.Error())
			}
			key = "0x" + hex.EncodeToString(digest)
		})
		return key
	}
}
