// Package nvector wraps Go float64 slices as solver vector payloads.
//
// A Serial never copies its payload: the slice passed to Wrap is the storage
// the solver reads and writes, and Data returns that same slice. The length
// is cached at wrap time and checked against every session before a native
// call is made.
package nvector

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncompatibleLength reports a vector whose length does not match the
// length a session or another vector expects.
var ErrIncompatibleLength = errors.New("nvector: incompatible vector length")

// Serial is a vector payload backed by a Go slice.
type Serial struct {
	data []float64
	n    int
}

// Wrap returns a vector over data without copying it.
func Wrap(data []float64) *Serial {
	return &Serial{data: data, n: len(data)}
}

// New returns a zero vector of length n.
func New(n int) *Serial {
	return Wrap(make([]float64, n))
}

// Data returns the payload slice. It aliases the slice passed to Wrap.
func (v *Serial) Data() []float64 { return v.data }

// Len returns the cached length.
func (v *Serial) Len() int { return v.n }

// Check fails with ErrIncompatibleLength unless other has the same length
// as v.
func (v *Serial) Check(other *Serial) error {
	if other == nil {
		return fmt.Errorf("%w: nil vector", ErrIncompatibleLength)
	}
	return CheckLen(other, v.n)
}

// CheckLen fails with ErrIncompatibleLength unless v has length n and its
// cached length still matches its payload.
func CheckLen(v *Serial, n int) error {
	switch {
	case v == nil:
		return fmt.Errorf("%w: nil vector", ErrIncompatibleLength)
	case v.n != len(v.data):
		return fmt.Errorf("%w: cached length %d, payload length %d", ErrIncompatibleLength, v.n, len(v.data))
	case v.n != n:
		return fmt.Errorf("%w: got %d, want %d", ErrIncompatibleLength, v.n, n)
	}
	return nil
}

// Clone returns a vector over a copy of v's payload.
func (v *Serial) Clone() *Serial {
	return Wrap(append([]float64(nil), v.data...))
}

// Fill sets every element to c.
func (v *Serial) Fill(c float64) {
	for i := range v.data {
		v.data[i] = c
	}
}

// MaxNorm returns the largest absolute element.
func (v *Serial) MaxNorm() float64 {
	var m float64
	for _, x := range v.data {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

// Dot returns the inner product of v and w.
func (v *Serial) Dot(w *Serial) (float64, error) {
	if err := v.Check(w); err != nil {
		return 0, err
	}
	var s float64
	for i, x := range v.data {
		s += x * w.data[i]
	}
	return s, nil
}
