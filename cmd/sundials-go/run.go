package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/sunml/sundials-go/pkg/sundials"
	"github.com/sunml/sundials-go/pkg/sundials/config"
	"github.com/sunml/sundials-go/pkg/sundials/cvode"
	"github.com/sunml/sundials-go/pkg/sundials/kinsol"
	"github.com/sunml/sundials-go/pkg/sundials/logging"
	"github.com/sunml/sundials-go/pkg/sundials/nvector"
)

func newRunCmd(logger func() logging.Logger) *cobra.Command {
	var (
		path    string
		backend string
		plot    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve a problem described by a YAML file",
		Long: `Solve a demo problem. Without --config, a decay problem on [0, 1]
is solved. --backend overrides $SUNDIALS_BACKEND, which overrides the
backend named in the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := config.Default()
			p.ApplyEnv()
			if path != "" {
				var err error
				if p, err = config.Load(path); err != nil {
					return err
				}
			}
			if backend != "" {
				p.Backend = backend
			}
			backendOpt, err := p.BackendOption()
			if err != nil {
				return err
			}
			opts := []sundials.Option{backendOpt, sundials.WithLogger(logger())}
			return runProblem(cmd.Context(), cmd.OutOrStdout(), p, opts, plot)
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "problem file (YAML)")
	cmd.Flags().StringVar(&backend, "backend", "", "auto, native or reference")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot y[0] at the output times")
	return cmd
}

func runProblem(ctx context.Context, w io.Writer, p config.Problem, opts []sundials.Option, plot bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch p.Kind {
	case "decay", "roots":
		return runODE(ctx, w, p, opts, plot)
	case "sqrt":
		return runSqrt(ctx, w, p, opts)
	}
	return fmt.Errorf("%w: unknown problem kind %q", sundials.ErrIllegalInput, p.Kind)
}

func runODE(ctx context.Context, w io.Writer, p config.Problem, opts []sundials.Option, plot bool) error {
	rate := p.Rate
	rhs := func(_ float64, y, ydot []float64) error {
		for i := range y {
			ydot[i] = -rate * y[i]
		}
		return nil
	}
	s, err := cvode.Init(ctx, p.CVode, rhs, 0, nvector.Wrap(append([]float64(nil), p.Y0...)), opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	if p.Kind == "roots" {
		threshold := p.Threshold
		err := s.RootInit(1, func(_ float64, y, g []float64) error {
			g[0] = y[0] - threshold
			return nil
		})
		if err != nil {
			return err
		}
	}

	outputs := max(p.Outputs, 1)
	y := nvector.New(s.Len())
	series := []float64{p.Y0[0]}
	for i := 1; i <= outputs; {
		tout := p.TOut * float64(i) / float64(outputs)
		t, res, err := s.Solve(ctx, tout, y)
		if err != nil {
			return err
		}
		switch res {
		case cvode.RootsFound:
			info, err := s.RootInfo()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "root   t=%-12.6g y=%v dir=%d\n", t, y.Data(), info[0])
			continue
		case cvode.StopTimeReached:
			fmt.Fprintf(w, "tstop  t=%-12.6g y=%v\n", t, y.Data())
			return nil
		}
		fmt.Fprintf(w, "output t=%-12.6g y=%v\n", t, y.Data())
		series = append(series, y.Data()[0])
		i++
	}
	if plot {
		fmt.Fprintln(w, asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("y[0] on [0, %g]", p.TOut)),
		))
	}
	st, err := s.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "steps=%d rhs=%d\n", st.Steps, st.RHSEvals)
	return nil
}

func runSqrt(ctx context.Context, w io.Writer, p config.Problem, opts []sundials.Option) error {
	strategy, err := kinsol.ParseStrategy(p.Strategy)
	if err != nil {
		return err
	}
	target := p.Target
	sys := func(u, f []float64) error {
		if u[0] <= 0 && strategy == kinsol.FixedPoint {
			return sundials.Recoverable(errors.New("non-positive iterate"))
		}
		if strategy == kinsol.FixedPoint {
			f[0] = (u[0] + target/u[0]) / 2
			return nil
		}
		f[0] = u[0]*u[0] - target
		return nil
	}
	s, err := kinsol.Init(ctx, p.Kinsol, sys, nvector.New(1), opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	if strategy != kinsol.FixedPoint {
		err := s.SetDenseLinearSolver(func(args kinsol.JacArgs, jac sundials.Dense) error {
			jac.Set(0, 0, 2*args.U[0])
			return nil
		})
		if err != nil {
			return err
		}
	}
	u := nvector.Wrap([]float64{p.Guess})
	res, err := s.Solve(ctx, u, strategy, nil, nil)
	if err != nil {
		return err
	}
	st, err := s.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: u=%.12g (%s, iters=%d)\n", strategy, u.Data()[0], res, st.Iters)
	return nil
}
