package refsolver

import (
	"math"
	"sync/atomic"

	"github.com/sunml/sundials-go/internal/native"
)

var live atomic.Int64

// Live returns the number of solver memories that were created and not yet
// freed, across both families.
func Live() int64 { return live.Load() }

const (
	defaultInitStep   = 1e-2
	defaultMaxSteps   = 500
	maxStepRetries    = 10
	defaultMaxIters   = 200
	maxDampingRetries = 5
)

var (
	uround         = math.Nextafter(1, 2) - 1
	defaultFnorm   = math.Cbrt(uround)
	defaultScsteps = math.Pow(uround, 2.0/3.0)
)

var (
	_ native.CVodeLib  = (*CVode)(nil)
	_ native.KinsolLib = (*Kinsol)(nil)
)

func maxNorm(v, scale []float64) float64 {
	var m float64
	for i, x := range v {
		if scale != nil {
			x *= scale[i]
		}
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func signOf(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
