// Package oracle models the local preimage oracle populated by the
// out-of-scope host runner during derivation. The host runner itself is an
// external collaborator; this package only defines the shape the
// derivation driver consumes.
package oracle

// Preimages is the ordered set of byte chunks the host runner collects
// while executing the fault-proof program's bounds; the derivation driver
// copies these, in order, into the witness artifact.
type Preimages struct {
	Chunks [][]byte
}

// Len reports the number of collected chunks.
func (p Preimages) Len() int { return len(p.Chunks) }
