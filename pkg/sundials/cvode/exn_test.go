package cvode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Native code indexes into this sequence; reordering it is a breaking change.
func TestExnOrder(t *testing.T) {
	want := []Exn{
		IllInput, TooClose, TooMuchWork, TooMuchAccuracy, ErrFailure,
		ConvergenceFailure, LinearInitFailure, LinearSetupFailure,
		LinearSolveFailure, NonlinearFailure, NonlinearInitFailure,
		NonlinearSetupFailure, RhsFuncFailure, FirstRhsFuncFailure,
		RepeatedRhsFuncFailure, UnrecoverableRhsFuncFailure, RootFuncFailure,
		ConstraintFailure, BadK, BadT, VectorOpErr, ProjFuncFailure,
		RepeatedProjFuncError, ProjectionNotEnabled,
	}
	require.Equal(t, want, Exns())
	for i, e := range Exns() {
		assert.Equal(t, i, int(e))
		assert.NotEqual(t, "unknown", e.String(), "exn %d has no text", i)
	}
	assert.Equal(t, "unknown", Exn(len(want)).String())
}

func TestEveryExnHasReturnCode(t *testing.T) {
	seen := make(map[Exn]bool)
	for _, e := range returnCodes {
		seen[e] = true
	}
	for _, e := range Exns() {
		assert.True(t, seen[e], "no return code maps to %v", e)
	}
}

func TestTranslateReturnCode(t *testing.T) {
	for code, exn := range returnCodes {
		err := TranslateReturnCode("CVode", code)
		var se *sundials.SolverError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, code, se.Code)
		assert.Equal(t, "CVode", se.Call)
		assert.ErrorIs(t, err, exn)
	}

	assert.NoError(t, TranslateReturnCode("CVode", native.CVSuccess))
	assert.NoError(t, TranslateReturnCode("CVode", native.CVRootReturn))
	assert.ErrorIs(t, TranslateReturnCode("CVode", native.CVMemNull), sundials.ErrUseAfterFree)
	assert.ErrorIs(t, TranslateReturnCode("CVodeInit", native.CVMemFail), sundials.ErrOutOfMemory)

	err := TranslateReturnCode("CVode", -9999)
	var internal *sundials.InternalSolverError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, -9999, internal.Code)
	for _, e := range Exns() {
		assert.False(t, errors.Is(err, e))
	}
}

func TestTranslateLSCode(t *testing.T) {
	assert.NoError(t, TranslateLSCode("CVodeSetLinearSolver", 0))
	assert.ErrorIs(t, TranslateLSCode("CVodeSetLinearSolver", native.CVLSIllInput), IllInput)
	assert.ErrorIs(t, TranslateLSCode("CVodeSetLinearSolver", native.CVLSSunLSFail), LinearInitFailure)
	assert.ErrorIs(t, TranslateLSCode("CVodeSetLinearSolver", native.CVLSMemNull), sundials.ErrUseAfterFree)

	var internal *sundials.InternalSolverError
	assert.ErrorAs(t, TranslateLSCode("CVodeSetLinearSolver", -9999), &internal)
}
