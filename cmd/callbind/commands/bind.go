package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/binder"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/scenario"
)

var (
	bindDump       bool
	bindColor      string
	bindPathMap    map[string]string
	bindJobs       int
	bindLegacy     bool
	bindNoExpanded bool
	bindFailOnErr  bool
)

var bindCmd = &cobra.Command{
	Use:   "bind scenario.yaml...",
	Short: "Bind the call sites of one or more scenarios",
	Long: `Bind every call site of the given scenario files and print the bound
expression and diagnostics of each.

Calls that declare an expectation are checked against it; the command fails
when any of them does not match. With --fail-on-error, error diagnostics of
calls without an expectation fail the command too.

Examples:
  callbind bind widgets.yaml
  callbind bind --pathmap /src/=/build/ widgets.yaml
  callbind bind --dump --color never widgets.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBind,
}

func init() {
	bindCmd.Flags().BoolVarP(&bindDump, "dump", "d", false, "Print the structure of every bound expression")
	bindCmd.Flags().StringVar(&bindColor, "color", "auto", "Colorize output: auto, always or never")
	bindCmd.Flags().StringToStringVar(&bindPathMap, "pathmap", nil, "Source path prefix rewrites (old=new), added to the scenario's")
	bindCmd.Flags().IntVarP(&bindJobs, "jobs", "j", 0, "Calls bound in parallel (0 means one per CPU)")
	bindCmd.Flags().BoolVar(&bindLegacy, "legacy-defaults", false, "Report unconvertible decimal and date/time defaults")
	bindCmd.Flags().BoolVar(&bindNoExpanded, "no-expanded-params", false, "Reject the expanded form of non-array params collections")
	bindCmd.Flags().BoolVar(&bindFailOnErr, "fail-on-error", false, "Fail when a call without an expectation reports an error")
}

func runBind(cmd *cobra.Command, args []string) error {
	color, err := useColor(bindColor, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	r := &reporter{w: cmd.OutOrStdout(), color: color, dump: bindDump}
	log := logger(cmd)

	failed := 0
	var unchecked binderr.Bag
	for _, path := range args {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		log.Debug("scenario loaded", "scenario", s.Name, "calls", len(s.Calls))
		results, err := bindScenario(cmd.Context(), s, log)
		if err != nil {
			return err
		}
		failed += r.scenario(s, results)
		for _, res := range results {
			if res.call.Expect.IsZero() {
				for _, d := range res.diags {
					unchecked.Add(d)
				}
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d call(s) did not match their expectations", failed)
	}
	if bindFailOnErr {
		return unchecked.Err()
	}
	return nil
}

// result is one bound call site.
type result struct {
	call  *scenario.Call
	expr  bound.Expr
	diags []binderr.Diagnostic
}

// bindScenario binds every call of s. Calls are independent and share one
// binder, so they are bound in parallel; results keep the scenario order.
func bindScenario(ctx context.Context, s *scenario.Scenario, log *slog.Logger) ([]result, error) {
	pathMap := make(map[string]string, len(s.PathMap)+len(bindPathMap))
	for k, v := range s.PathMap {
		pathMap[k] = v
	}
	for k, v := range bindPathMap {
		pathMap[k] = v
	}
	b := binder.New(binder.Config{
		Logger:                         log.With("scenario", s.Name),
		PathMap:                        pathMap,
		DisallowExpandedNonArrayParams: bindNoExpanded,
		WarnLegacyDefaults:             bindLegacy,
	})

	jobs := bindJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]result, len(s.Calls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, c := range s.Calls {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var bag binderr.Bag
			e := b.BindCall(c.Scope, c.Syntax, &bag)
			results[i] = result{call: c, expr: e, diags: bag.Diagnostics()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
