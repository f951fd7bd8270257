// Package commands provides the CLI commands for the callbind tool.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "callbind",
	Short: "Call-site binder for C#-style method invocations",
	Long: `callbind binds call sites described in YAML scenario files.

A scenario declares types, delegates, extension methods and locals, and lists
call sites to bind against them. Each call is resolved to a bound call,
a dynamic invocation or an error node, and its diagnostics are reported.

Usage:
  callbind bind widgets.yaml           Bind every call in a scenario
  callbind bind --dump a.yaml b.yaml   Also print the bound structure
  callbind codes                       List the diagnostic codes
  callbind version                     Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(bindCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log binding decisions to stderr")
}

// logger returns the logger handed to the binder. Binding decisions are
// logged at debug level, so they only show up with --verbose.
func logger(cmd *cobra.Command) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}
