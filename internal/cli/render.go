package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/pipeline"
	"github.com/matzehuels/reflow/pkg/render"
)

// renderCommand creates the render command for generating output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		output     string
		formatsStr string
	)
	opts := pipeline.Options{Style: pipeline.DefaultStyle}

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to SVG, PNG, DOT, JSON or text",
		Long: `Render a document to SVG, PNG, DOT, JSON or text.

The document is laid out first (with the same overrides as 'place'), then
drawn in every requested format. PNG output goes through Graphviz with
every box pinned at its placed position.

Both the layout and the rendered artifacts are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := flags.options(cmd)
			layout.Formats = parseFormats(formatsStr)
			layout.Style = opts.Style
			layout.Labels = opts.Labels
			layout.Bounds = opts.Bounds
			return c.runRender(cmd.Context(), args[0], layout, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json, txt (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: simple (default), outline")
	cmd.Flags().BoolVar(&opts.Labels, "labels", true, "draw box labels")
	cmd.Flags().BoolVar(&opts.Bounds, "bounds", false, "outline the measured bounds")

	_ = cmd.RegisterFlagCompletionFunc("style", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.StyleNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runRender loads the document, runs the full pipeline and writes every
// artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	d, err := readDocument(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := newSpinner(ctx, "Rendering...")
	sp.Start()

	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		sp.StopWithError("Render failed")
		return err
	}
	sp.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats:     result.Stats,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams holds what writeArtifacts needs to place rendered
// outputs on disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     pipeline.Stats
	cacheHit  bool
}

// artifactPaths returns the file each format is written to. A single
// format honours output verbatim; several formats share a base path.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeArtifacts(p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	printSuccess("Render complete")
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printDetail("%d boxes · %d rows · layout %s · render %s",
		p.stats.BoxCount, p.stats.RowCount, p.stats.LayoutTime, p.stats.RenderTime)
	if p.cacheHit {
		printDetail("%s", styleCached.Render(iconCached))
	}
	return nil
}
