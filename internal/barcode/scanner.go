// Package barcode abstracts where scanned codes come from. Real hardware
// scanners type into the search field and never reach this package; the
// camera path has no real decoder, so the only implementation here simulates
// one for demo and test setups.
package barcode

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

var ErrNoCodes = errors.New("scanner has no codes configured")

type Scanner interface {
	// Scan blocks until a code is available or ctx is done.
	Scan(ctx context.Context) (string, error)
}

// SimulatedScanner hands out codes from a fixed pool, standing in for the
// camera decoder.
type SimulatedScanner struct {
	mu    sync.Mutex
	codes []string
	rng   *rand.Rand
}

func NewSimulatedScanner(codes []string, seed int64) *SimulatedScanner {
	cp := make([]string, len(codes))
	copy(cp, codes)
	return &SimulatedScanner{codes: cp, rng: rand.New(rand.NewSource(seed))}
}

func (s *SimulatedScanner) Scan(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return "", ErrNoCodes
	}
	return s.codes[s.rng.Intn(len(s.codes))], nil
}
