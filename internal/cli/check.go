package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/pipeline"
)

// checkCommand creates the check command for layout consistency checks.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  layoutFlags
		random int
		seed   uint64
		dump   string
	)

	cmd := &cobra.Command{
		Use:   "check [document]",
		Short: "Verify that layouts are consistent",
		Long: `Verify that layouts are consistent.

With a document, lays it out and checks the result: one rectangle per box at
the box's size, placements spanning exactly the measured size, rows stacked
top to bottom without overlap.

With --random N, lays out N random documents (proposed width 393, boxes up
to 410 wide so some never fit) and checks each. Failing documents can be
written to --dump for replay.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("random") {
				return c.runSweep(cmd.Context(), random, seed, dump)
			}
			if len(args) == 0 {
				return fmt.Errorf("a document or --random is required")
			}
			return c.runCheck(cmd, args[0], &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&random, "random", defaultSweepRuns, "check this many random documents")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for --random")
	cmd.Flags().StringVar(&dump, "dump", "", "directory to write failing random documents to")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, input string, flags *layoutFlags) error {
	d, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.options(cmd)
	res, err := runner.Compute(cmd.Context(), d, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if err := pipeline.Check(opts.Apply(d), res); err != nil {
		printError("%s", err)
		return err
	}

	printSuccess("Layout is consistent")
	printStats(len(res.Placements), res.Rows, res.Size(), false)
	return nil
}

func (c *CLI) runSweep(ctx context.Context, runs int, seed uint64, dump string) error {
	if runs <= 0 {
		return fmt.Errorf("--random must be positive, got %d", runs)
	}

	p := newProgress(loggerFromContext(ctx))
	sp := newSpinner(ctx, fmt.Sprintf("Checking %d random layouts...", runs))
	sp.Start()
	report, err := pipeline.Sweep(ctx, runs, seed)
	sp.Stop()
	if err != nil {
		return err
	}
	p.done("checked random layouts", "runs", report.Runs, "failures", len(report.Failures), "seed", seed)

	if len(report.Failures) == 0 {
		printSuccess("All %d layouts are consistent", report.Runs)
		printDetail("seed %d", seed)
		return nil
	}

	for _, f := range report.Failures {
		printError("run %d: %s", f.Run, f.Err)
		if dump == "" {
			continue
		}
		path, err := dumpDocument(dump, f)
		if err != nil {
			return err
		}
		printFile(path)
	}
	return fmt.Errorf("%d of %d random layouts are inconsistent (seed %d)",
		len(report.Failures), report.Runs, seed)
}

func dumpDocument(dir string, f pipeline.SweepFailure) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("run-%d.json", f.Run))
	if err := document.WriteFile(f.Document, path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
