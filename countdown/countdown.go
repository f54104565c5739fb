// Package countdown prints 1..N on a single terminal line, one value per tick.
package countdown

import (
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/tpalab/regeval/pkg/errors"
)

// DefaultDelay is the pause after each printed value.
const DefaultDelay = 200 * time.Millisecond

// Seq is a lazy, finite sequence of 1..n that can be consumed once.
type Seq struct {
	mu       sync.Mutex
	n        int
	consumed bool
}

// Sequence returns the sequence 1..n. For n <= 0 it is empty.
func Sequence(n int) *Seq {
	return &Seq{n: n}
}

// All yields the values in ascending order. Only the first call yields
// anything; later calls return an empty iterator.
func (s *Seq) All() iter.Seq[int] {
	s.mu.Lock()
	spent := s.consumed
	s.consumed = true
	s.mu.Unlock()

	return func(yield func(int) bool) {
		if spent {
			return
		}
		for k := 1; k <= s.n; k++ {
			if !yield(k) {
				return
			}
		}
	}
}

// Emitter writes a sequence to Out, returning the cursor to the start of
// the line before every value.
type Emitter struct {
	Out   io.Writer
	Delay time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// NewEmitter returns an Emitter writing to w with DefaultDelay.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{Out: w, Delay: DefaultDelay, Sleep: time.Sleep}
}

// Run prints 1..n then a newline. n <= 0 prints only the newline.
func (e *Emitter) Run(n int) error {
	sleep := e.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	for k := range Sequence(n).All() {
		if _, err := fmt.Fprintf(e.Out, "\r%d", k); err != nil {
			return errors.Wrapf(err, "write value %d", k)
		}
		sleep(e.Delay)
	}
	if _, err := io.WriteString(e.Out, "\n"); err != nil {
		return errors.Wrap(err, "write newline")
	}
	return nil
}
