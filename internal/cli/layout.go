package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/render"
)

// measureCommand creates the measure command.
func (c *CLI) measureCommand() *cobra.Command {
	var (
		flags  layoutFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "measure [document]",
		Short: "Print the size a document's boxes need",
		Long: `Print the size a document's boxes need.

The document is a .json or .toml file ("-" reads JSON from stdin). Boxes are
packed into rows at the proposed width (the document's, or --width); the
reported width never exceeds the widest row and never falls below the widest
box.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, cached, err := c.runLayout(cmd.Context(), args[0], &flags, cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"width":  res.Width,
					"height": res.Height,
					"rows":   res.Rows,
				})
			}
			fmt.Fprintln(out, formatSize(res.Size()))
			c.Logger.Debug("measured", "rows", res.Rows, "cached", cached)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print width, height and row count as JSON")

	return cmd
}

// placeCommand creates the place command.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		ascii  bool
		text   render.TextOptions
	)

	cmd := &cobra.Command{
		Use:   "place [document]",
		Short: "Lay out a document and print the placements",
		Long: `Lay out a document and print the placements.

Every box gets exactly one rectangle, in input order. The result is printed
as JSON, written to --output, or drawn as a character grid with --ascii.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, cached, err := c.runLayout(cmd.Context(), args[0], &flags, cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case ascii:
				fmt.Fprintln(out, render.RenderText(res, text))
			case output != "":
				if err := document.WriteResultFile(res, output); err != nil {
					return fmt.Errorf("write output %s: %w", output, err)
				}
				printSuccess("Layout complete")
				printFile(output)
				printStats(len(res.Placements), res.Rows, res.Size(), cached)
				printNewline()
				printNextStep("Inspect", appName+" inspect "+args[0])
			default:
				return document.WriteResult(res, out)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result JSON to a file")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw the placements as a character grid")
	cmd.Flags().Float64Var(&text.CellWidth, "cell-width", render.DefaultCellWidth, "layout units per column (--ascii)")
	cmd.Flags().Float64Var(&text.CellHeight, "cell-height", render.DefaultCellHeight, "layout units per line (--ascii)")
	cmd.Flags().BoolVar(&text.Labels, "labels", true, "write labels inside boxes (--ascii)")

	return cmd
}

// runLayout loads a document and lays it out with the runner.
func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, cmd *cobra.Command) (*document.Result, bool, error) {
	d, err := readDocument(input)
	if err != nil {
		return nil, false, fmt.Errorf("load document %s: %w", input, err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return nil, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := newProgress(loggerFromContext(ctx))
	res, cached, err := runner.ComputeWithCacheInfo(ctx, d, flags.options(cmd))
	if err != nil {
		return nil, false, fmt.Errorf("compute layout: %w", err)
	}
	p.done("placed boxes", "boxes", len(res.Placements), "rows", res.Rows, "cached", cached)
	return res, cached, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
