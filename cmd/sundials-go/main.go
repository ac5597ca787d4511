package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sunml/sundials-go/pkg/sundials"
	"github.com/sunml/sundials-go/pkg/sundials/logging"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "sundials-go",
		Short:         "Run SUNDIALS demo problems from Go",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log solver sessions at debug level")

	logger := func() logging.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return logging.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print wrapper and native library versions",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "sundials-go %s\n", sundials.WrapperVersion())
				fmt.Fprintf(cmd.OutOrStdout(), "native: %s\n", sundials.NativeVersion())
			},
		},
		newRunCmd(logger),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
