package temporal

import (
	"errors"
	"fmt"
	"iter"
)

// Stepper is a temporal value that a Series can advance.
type Stepper[T any] interface {
	Temporal
	AddSpan(s Span) (T, error)
	Compare(o T) int
}

// Series is a lazy sequence of values starting at a value, each the
// previous one plus a fixed Span. The sequence ends only when the next value
// would be out of range. A Series is not safe for concurrent use; call Reset
// or create another to start over.
type Series[T Stepper[T]] struct {
	start T
	step  Span
	cur   T
	n     int64
	done  bool
	err   error
}

// NewSeries returns a series starting at start and advancing by step.
// Returns ErrValue if step is zero, if start cannot be advanced by step at
// all, or if the first step does not move in the direction of step.
func NewSeries[T Stepper[T]](start T, step Span) (*Series[T], error) {
	if step.IsZero() {
		return nil, fmt.Errorf("%w: series step must be nonzero", ErrValue)
	}
	first, err := start.AddSpan(step)
	if err != nil && errors.Is(err, ErrValue) {
		return nil, fmt.Errorf("%w: cannot step %v by %v: %w", ErrValue, start.Kind(), step, err)
	}
	if err == nil && first.Compare(start) != step.Signum() {
		return nil, fmt.Errorf("%w: series step %v does not advance %v", ErrValue, step, start)
	}
	return &Series[T]{start: start, step: step, cur: start}, nil
}

// Step returns the step of s.
func (s *Series[T]) Step() Span { return s.step }

// Next returns the next value in the series. Returns false once the
// previous value was the last in range; Err then reports why.
func (s *Series[T]) Next() (T, bool) {
	if s.done {
		var zero T
		return zero, false
	}
	cur := s.cur
	s.n++
	next, err := cur.AddSpan(s.step)
	if err != nil {
		s.done = true
		s.err = fmt.Errorf("%w: series ended after %d values: %w", ErrOverflow, s.n, err)
	} else {
		s.cur = next
	}
	return cur, true
}

// Err returns the error that ended the series, if any.
func (s *Series[T]) Err() error { return s.err }

// Reset restarts the series from its start.
func (s *Series[T]) Reset() {
	s.n, s.cur, s.done, s.err = 0, s.start, false, nil
}

// Take returns up to n further values.
func (s *Series[T]) Take(n int) []T {
	out := make([]T, 0, max(n, 0))
	for len(out) < n {
		v, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// TakeWhile returns further values until keep returns false, excluding the
// value that ended it.
func (s *Series[T]) TakeWhile(keep func(T) bool) []T {
	var out []T
	for v := range s.All() {
		if !keep(v) {
			break
		}
		out = append(out, v)
	}
	return out
}

// Until returns further values up to and including end, in the direction of
// the step.
func (s *Series[T]) Until(end T) []T {
	dir := s.step.Signum()
	return s.TakeWhile(func(v T) bool { return v.Compare(end) != dir })
}

// All returns an iterator over further values.
func (s *Series[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := s.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
