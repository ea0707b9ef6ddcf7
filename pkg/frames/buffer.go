// Package frames buffers timestamped rigid transforms per frame pair and
// answers time-targeted lookups over them. It is the in-process equivalent
// of a transform-tree listener: drivers push observations in, the
// calibration sampler looks transforms up at a single instant, with bounded
// waits for data that has not arrived yet.
package frames

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robogrid/handeye/pkg/geometry"
)

var (
	// ErrUnknownPair is returned when no observation for the frame pair
	// has ever been buffered.
	ErrUnknownPair = errors.New("no transform buffered for frame pair")

	// ErrExpired is returned when the requested instant is older than the
	// retention window.
	ErrExpired = errors.New("requested instant older than transform buffer")

	// ErrNotYetAvailable is returned when the requested instant is newer
	// than the latest buffered observation.
	ErrNotYetAvailable = errors.New("no transform buffered at requested instant yet")

	// ErrWaitTimeout is returned when a bounded wait elapsed before the
	// transform became available.
	ErrWaitTimeout = errors.New("timed out waiting for transform")
)

// Pair names a directed frame pair, parent to child.
type Pair struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type stamped struct {
	at time.Time
	tf geometry.RigidTransform
}

// Buffer holds a bounded history of observations per frame pair. All
// methods are safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	retain  time.Duration
	chains  map[Pair][]stamped
	updated chan struct{}
}

// DefaultRetention bounds how far back lookups can reach. Matches the
// usual transform-listener cache duration.
const DefaultRetention = 10 * time.Second

func NewBuffer(retain time.Duration) *Buffer {
	if retain <= 0 {
		retain = DefaultRetention
	}
	return &Buffer{
		retain:  retain,
		chains:  map[Pair][]stamped{},
		updated: make(chan struct{}),
	}
}

// Set records one observation and wakes all pending waits. Observations
// may arrive out of order; the chain is kept sorted by stamp.
func (b *Buffer) Set(pair Pair, at time.Time, tf geometry.RigidTransform) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chain := b.chains[pair]
	i := sort.Search(len(chain), func(i int) bool { return chain[i].at.After(at) })
	chain = append(chain, stamped{})
	copy(chain[i+1:], chain[i:])
	chain[i] = stamped{at: at, tf: tf}

	// Prune everything older than the retention window behind the newest
	// observation.
	oldest := chain[len(chain)-1].at.Add(-b.retain)
	first := 0
	for first < len(chain)-1 && chain[first].at.Before(oldest) {
		first++
	}
	b.chains[pair] = chain[first:]

	close(b.updated)
	b.updated = make(chan struct{})
}

// Lookup returns the transform for pair at the given instant,
// interpolating between the two bracketing observations. A zero instant
// means the latest buffered observation.
func (b *Buffer) Lookup(pair Pair, at time.Time) (geometry.RigidTransform, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chain := b.chains[pair]
	if len(chain) == 0 {
		return geometry.RigidTransform{}, ErrUnknownPair
	}
	if at.IsZero() {
		return chain[len(chain)-1].tf, nil
	}
	if at.Before(chain[0].at) {
		return geometry.RigidTransform{}, ErrExpired
	}
	last := chain[len(chain)-1]
	if at.After(last.at) {
		return geometry.RigidTransform{}, ErrNotYetAvailable
	}

	i := sort.Search(len(chain), func(i int) bool { return !chain[i].at.Before(at) })
	hi := chain[i]
	if hi.at.Equal(at) || i == 0 {
		return hi.tf, nil
	}
	lo := chain[i-1]
	span := hi.at.Sub(lo.at)
	if span <= 0 {
		return hi.tf, nil
	}
	frac := float64(at.Sub(lo.at)) / float64(span)
	return geometry.Interpolate(lo.tf, hi.tf, frac), nil
}

// WaitUntilAvailable blocks until at least one observation exists for the
// pair, the timeout elapses, or ctx is canceled.
func (b *Buffer) WaitUntilAvailable(ctx context.Context, pair Pair, timeout time.Duration) error {
	return b.wait(ctx, timeout, func() bool {
		return len(b.chains[pair]) > 0
	})
}

// WaitForInstant blocks until the pair can be looked up at the given
// instant, i.e. observations bracketing it exist.
func (b *Buffer) WaitForInstant(ctx context.Context, pair Pair, at time.Time, timeout time.Duration) error {
	return b.wait(ctx, timeout, func() bool {
		chain := b.chains[pair]
		if len(chain) == 0 {
			return false
		}
		return !chain[0].at.After(at) && !chain[len(chain)-1].at.Before(at)
	})
}

// wait polls cond under the buffer lock, sleeping on the update channel
// between checks. Never blocks past timeout or ctx.
func (b *Buffer) wait(ctx context.Context, timeout time.Duration, cond func() bool) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		b.mu.Lock()
		ok := cond()
		ch := b.updated
		b.mu.Unlock()
		if ok {
			return nil
		}

		select {
		case <-ch:
		case <-timer.C:
			return ErrWaitTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
