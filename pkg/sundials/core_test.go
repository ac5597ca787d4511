package sundials

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sunml/sundials-go/pkg/sundials/logging"
)

type fakeSession struct {
	core Core
}

func newFake(t *testing.T, frees *atomic.Int32, opts ...Option) *fakeSession {
	t.Helper()
	s := &fakeSession{}
	s.core.Setup("fake", NewOptions(append([]Option{WithLogger(logging.Discard())}, opts...)...))
	Bind(&s.core, s, func() { frees.Add(1) })
	return s
}

func TestCoreCloseIsIdempotent(t *testing.T) {
	var frees atomic.Int32
	s := newFake(t, &frees)
	require.NotEmpty(t, s.core.ID())

	got, err := Resolve[fakeSession](s.core.Key())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, s.core.Close(context.Background()))
	require.NoError(t, s.core.Close(context.Background()))
	assert.EqualValues(t, 1, frees.Load())
	require.ErrorIs(t, s.core.Check(), ErrUseAfterFree)

	_, err = Resolve[fakeSession](s.core.Key())
	require.ErrorIs(t, err, ErrUseAfterFree)
}

func TestCoreCloseDuringCall(t *testing.T) {
	var frees atomic.Int32
	s := newFake(t, &frees)
	require.NoError(t, s.core.Enter(context.Background()))
	require.ErrorIs(t, s.core.Close(context.Background()), ErrReentrant)
	s.core.Exit()
	require.NoError(t, s.core.Close(context.Background()))
	assert.EqualValues(t, 1, frees.Load())
}

func TestCoreReleasedWhenCollected(t *testing.T) {
	var frees atomic.Int32
	func() {
		s := newFake(t, &frees)
		_ = s.core.ID()
	}()
	require.Eventually(t, func() bool {
		runtime.GC()
		return frees.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCoreReport(t *testing.T) {
	var frees atomic.Int32
	s := newFake(t, &frees)
	t.Cleanup(func() { _ = s.core.Close(context.Background()) })
	fault := errors.New("handler")

	// Outside a call the fault is logged and dropped.
	s.core.Report(KindErrHandler, func() error { return fault })
	assert.NoError(t, s.core.Guard().Stashed())

	require.NoError(t, s.core.Enter(context.Background()))
	s.core.Report(KindErrHandler, func() error { panic(fault) })
	err := s.core.Reraise("CVode", -1, translateAll)
	s.core.Exit()

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, fault)
}

func TestCoreInitError(t *testing.T) {
	var frees atomic.Int32
	s := newFake(t, &frees)

	s.core.NativeError(-22, "CVODE", "CVodeInit", "y0 = NULL illegal.")
	err := s.core.InitError("CVodeInit", -22, translateAll)
	var ie *InitializationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "CVodeInit", ie.Call)
	assert.Equal(t, "y0 = NULL illegal.", ie.Msg)
	require.ErrorIs(t, err, errTranslated)

	fault := errors.New("errh fault")
	s.core.Guard().Stash(fault)
	err = s.core.InitError("CVodeSStolerances", -3, translateAll)
	require.ErrorAs(t, err, &ie)
	assert.Empty(t, ie.Msg)
	require.ErrorIs(t, err, fault)

	s.core.Release()
	s.core.Release()
	assert.EqualValues(t, 1, frees.Load())
}

func TestCoreTelemetry(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	var frees atomic.Int32
	s := newFake(t, &frees, WithTracerProvider(tp), WithMeterProvider(mp))
	t.Cleanup(func() { _ = s.core.Close(context.Background()) })

	ctx, span := s.core.Start(context.Background(), "fake.Solve")
	require.NoError(t, s.core.Enter(ctx))
	s.core.Invoke(KindRHS, func() error { return Recoverable(nil) })
	s.core.Invoke(KindRHS, func() error { return nil })
	s.core.NativeCall(ctx, "FakeSolve", -1)
	s.core.Exit()
	s.core.End(span, errors.New("failed"))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "fake.Solve", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("sundials.family", "fake"))
	assert.Equal(t, "failed", ended[0].Status().Description)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	assert.EqualValues(t, 2, sums["sundials.callback.invocations"])
	assert.EqualValues(t, 1, sums["sundials.native.calls"])
}
