// Package toolchain chooses the compiler version a build is pinned to.
package toolchain

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
)

// ErrNoVersions is returned when a selector has nothing to choose from.
var ErrNoVersions = errors.New("no toolchain versions configured")

// Selector picks the toolchain version for the next build.
type Selector interface {
	Select() (string, error)
}

// Fixed always selects the same version.
type Fixed string

// Select returns the fixed version.
func (f Fixed) Select() (string, error) {
	if f == "" {
		return "", ErrNoVersions
	}
	return string(f), nil
}

// Random selects uniformly from a fixed list of versions.
type Random struct {
	mu       sync.Mutex
	versions []string
	rng      *rand.Rand
}

// NewRandom returns a Random over versions drawing from src. A nil src uses
// a randomly seeded source.
func NewRandom(versions []string, src rand.Source) *Random {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Random{versions: slices.Clone(versions), rng: rand.New(src)}
}

// Select returns one of the configured versions.
func (r *Random) Select() (string, error) {
	if len(r.versions) == 0 {
		return "", ErrNoVersions
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[r.rng.IntN(len(r.versions))], nil
}

// Versions returns the candidate versions.
func (r *Random) Versions() []string {
	return slices.Clone(r.versions)
}

// New returns Fixed(pinned) when a version is pinned, otherwise a Random
// over versions.
func New(pinned string, versions []string) Selector {
	if pinned != "" {
		return Fixed(pinned)
	}
	return NewRandom(versions, nil)
}
