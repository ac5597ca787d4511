package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeProblem(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sundials-go ")
	assert.Contains(t, out, "native: ")
}

func TestRunDefaultDecay(t *testing.T) {
	out, err := execute(t, "run", "--backend", "reference")
	require.NoError(t, err)
	assert.Contains(t, out, "output t=1")
	assert.Contains(t, out, "steps=")
}

func TestRunPlot(t *testing.T) {
	path := writeProblem(t, "kind: decay\ny0: [1]\ntout: 2\noutputs: 8\n")
	out, err := execute(t, "run", "--backend", "reference", "--plot", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "y[0] on [0, 2]")
}

func TestRunRoots(t *testing.T) {
	path := writeProblem(t, "kind: roots\ny0: [1]\nrate: 1\nthreshold: 0.5\ntout: 2\noutputs: 2\n")
	out, err := execute(t, "run", "--backend", "reference", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "root ")
	assert.Contains(t, out, "dir=-1")
	assert.Contains(t, out, "output t=2")
}

func TestRunSqrt(t *testing.T) {
	for _, strategy := range []string{"newton", "linesearch", "fixedpoint"} {
		t.Run(strategy, func(t *testing.T) {
			path := writeProblem(t, "kind: sqrt\ntarget: 4\nguess: 1\nstrategy: "+strategy+"\n")
			out, err := execute(t, "run", "--backend", "reference", "-c", path)
			require.NoError(t, err)
			assert.Contains(t, out, strategy+": u=2")
		})
	}
}

func TestRunBackendFromEnv(t *testing.T) {
	t.Setenv("SUNDIALS_BACKEND", "gpu")
	_, err := execute(t, "run")
	require.ErrorContains(t, err, "gpu")

	out, err := execute(t, "run", "--backend", "reference")
	require.NoError(t, err)
	assert.Contains(t, out, "output t=1")

	t.Setenv("SUNDIALS_BACKEND", "reference")
	out, err = execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "output t=1")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", "--backend", "gpu")
	require.Error(t, err)

	_, err = execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeProblem(t, "kind: decay\ntout: 1\ncvode:\n  max_num_steps: 3\n")
	_, err = execute(t, "run", "--backend", "reference", "-c", path)
	require.ErrorContains(t, err, "too much work")
}
