package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/pipeline"
)

// layoutFlags holds the layout overrides shared by every command that lays
// out a document. Pointer options stay nil unless the flag was given, so
// the document's own settings win by default.
type layoutFlags struct {
	alignment  string
	spacing    float64
	negotiated bool
	width      float64
	noCache    bool
	refresh    bool
}

// register binds the flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.alignment, "alignment", "a", "", "alignment override: "+alignmentList())
	cmd.Flags().Float64Var(&f.spacing, "spacing", 0, "fixed spacing override")
	cmd.Flags().BoolVar(&f.negotiated, "negotiated", false, "use negotiated spacing, ignoring the document's")
	cmd.Flags().Float64VarP(&f.width, "width", "w", 0, "proposed width override")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")

	_ = cmd.RegisterFlagCompletionFunc("alignment", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return alignmentNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// options converts the flags into pipeline options. Only flags the user
// set become overrides.
func (f *layoutFlags) options(cmd *cobra.Command) pipeline.Options {
	opts := pipeline.Options{
		Alignment:  f.alignment,
		Negotiated: f.negotiated,
		Refresh:    f.refresh,
	}
	if cmd.Flags().Changed("spacing") {
		v := f.spacing
		opts.Spacing = &v
	}
	if cmd.Flags().Changed("width") {
		v := f.width
		opts.Width = &v
	}
	return opts
}

func alignmentNames() []string {
	all := flow.Alignments()
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.String()
	}
	return names
}

func alignmentList() string {
	return strings.Join(alignmentNames(), ", ")
}
