package proverproxy

import "errors"

// ErrUnknownKey is returned by getProof when no remote request id is
// bound to the claim key.
var ErrUnknownKey = errors.New("proverproxy: no request id bound to key")
