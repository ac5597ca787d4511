// Package parallel provides distributed vector payloads: each rank holds a
// local slice and the ranks together form one global vector.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/sunml/sundials-go/pkg/sundials/nvector"
)

// ErrIncorrectGlobalSize reports that the local lengths do not add up to
// the declared global length.
var ErrIncorrectGlobalSize = errors.New("parallel: local lengths do not sum to the global length")

// Op is a reduction operation.
type Op int

const (
	OpSum Op = iota
	OpMax
	OpMin
)

// Comm is the subset of a message-passing communicator that distributed
// vectors need. Every method is collective.
type Comm interface {
	Rank() int
	Size() int
	AllReduceInt(ctx context.Context, v int64, op Op) (int64, error)
	AllReduceFloat(ctx context.Context, v float64, op Op) (float64, error)
}

// Vector is one rank's part of a distributed vector.
type Vector struct {
	local  *nvector.Serial
	global int64
	comm   Comm
}

// Wrap wraps this rank's local slice without copying it. It is collective:
// every rank must call it, and it fails on every rank with
// ErrIncorrectGlobalSize unless the local lengths sum to exactly global.
func Wrap(ctx context.Context, local []float64, global int64, comm Comm) (*Vector, error) {
	if comm == nil {
		return nil, errors.New("parallel: nil communicator")
	}
	sum, err := comm.AllReduceInt(ctx, int64(len(local)), OpSum)
	if err != nil {
		return nil, fmt.Errorf("parallel: reducing local lengths: %w", err)
	}
	if sum != global {
		return nil, fmt.Errorf("%w: sum %d, global %d", ErrIncorrectGlobalSize, sum, global)
	}
	return &Vector{local: nvector.Wrap(local), global: global, comm: comm}, nil
}

// Local returns this rank's payload.
func (v *Vector) Local() *nvector.Serial { return v.local }

// Data returns this rank's payload slice.
func (v *Vector) Data() []float64 { return v.local.Data() }

// GlobalLen returns the global length.
func (v *Vector) GlobalLen() int64 { return v.global }

// Comm returns the communicator the vector was wrapped with.
func (v *Vector) Comm() Comm { return v.comm }

// compatible checks that w is distributed like v: same global length, same
// communicator, same local length.
func (v *Vector) compatible(w *Vector) error {
	if w == nil {
		return fmt.Errorf("%w: nil vector", nvector.ErrIncompatibleLength)
	}
	if w.global != v.global {
		return fmt.Errorf("%w: global %d and %d", nvector.ErrIncompatibleLength, v.global, w.global)
	}
	if !sameComm(v.comm, w.comm) {
		return fmt.Errorf("%w: vectors use different communicators", nvector.ErrIncompatibleLength)
	}
	return v.local.Check(w.local)
}

func sameComm(a, b Comm) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return a.Rank() == b.Rank() && a.Size() == b.Size()
}

// Dot returns the global inner product of v and w. Collective.
func (v *Vector) Dot(ctx context.Context, w *Vector) (float64, error) {
	if err := v.compatible(w); err != nil {
		return 0, err
	}
	local, err := v.local.Dot(w.local)
	if err != nil {
		return 0, err
	}
	return v.comm.AllReduceFloat(ctx, local, OpSum)
}

// MaxNorm returns the global max norm. Collective.
func (v *Vector) MaxNorm(ctx context.Context) (float64, error) {
	return v.comm.AllReduceFloat(ctx, v.local.MaxNorm(), OpMax)
}

// Sum returns the sum of every element. Collective.
func (v *Vector) Sum(ctx context.Context) (float64, error) {
	var s float64
	for _, x := range v.local.Data() {
		s += x
	}
	return v.comm.AllReduceFloat(ctx, s, OpSum)
}

// WRMSNorm returns the weighted root-mean-square norm with weights w, the
// norm the solvers use for error tests. The norm of an empty vector is 0.
// Collective.
func (v *Vector) WRMSNorm(ctx context.Context, w *Vector) (float64, error) {
	if err := v.compatible(w); err != nil {
		return 0, err
	}
	if v.global == 0 {
		return 0, nil
	}
	var s float64
	wd := w.local.Data()
	for i, x := range v.local.Data() {
		s += (x * wd[i]) * (x * wd[i])
	}
	total, err := v.comm.AllReduceFloat(ctx, s, OpSum)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(total / float64(v.global)), nil
}
