package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for reflow.

Load completions for the current shell:

  bash:        source <(reflow completion bash)
  zsh:         reflow completion zsh > "${fpath[1]}/_reflow"
  fish:        reflow completion fish | source
  powershell:  reflow completion powershell | Out-String | Invoke-Expression

Alignment, style and format flags complete their values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
