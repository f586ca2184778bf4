package dice

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// SequenceSource replays a fixed sequence of values, wrapping at the end.
// Intended for deterministic tests and replay.
//
// Invariant: each value returned is the stored value modulo n, which lies in
// [0, n) for non-negative stored values.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	idx    int
}

// NewSequenceSource returns a Source that replays values in order.
//
// Precondition: values must be non-empty.
func NewSequenceSource(values ...int) *SequenceSource {
	if len(values) == 0 {
		panic("dice: NewSequenceSource requires at least one value")
	}
	return &SequenceSource{values: values}
}

// Intn returns the next value in the sequence modulo n.
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v % n
}
