package derive

import "errors"

// ErrInvalidInput is returned when a hash does not resolve to a header on
// its chain, or l2_number == 0.
var ErrInvalidInput = errors.New("derive: invalid input")

// ErrUpstream is returned when the fetcher or host runner fails, including
// when l1_head_hash resolves to a block older than l2_hash's L1 origin.
var ErrUpstream = errors.New("derive: upstream error")

// ErrExecution is returned when the optional zkVM sanity-check execution
// fails.
var ErrExecution = errors.New("derive: execution error")
