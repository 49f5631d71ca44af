package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/document"
)

// inspectCommand creates the inspect command, which shows placements as a
// table.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "inspect [document]",
		Short: "Show a document's placements as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, cached, err := c.runLayout(cmd.Context(), args[0], &flags, cmd)
			if err != nil {
				return err
			}

			spacing := "negotiated"
			if res.Spacing != nil {
				spacing = formatFloat(*res.Spacing)
			}
			pairs := [][2]string{
				{"Alignment", res.Alignment.String()},
				{"Spacing", spacing},
				{"Size", formatSize(res.Size())},
				{"Rows", strconv.Itoa(res.Rows)},
			}
			if cached {
				pairs = append(pairs, [2]string{"Cache", styleCached.Render(iconCached)})
			}
			out := cmd.OutOrStdout()
			printKeyValues(out, pairs)
			fmt.Fprintln(out)
			fmt.Fprintln(out, placementTable(res))
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// placementTable renders one table row per placement. Rows alternate
// shading by layout row so wraps stand out.
func placementTable(res *document.Result) string {
	rows := make([][]string, len(res.Placements))
	for i, p := range res.Placements {
		rows[i] = []string{
			strconv.Itoa(i),
			p.ID,
			p.Label,
			strconv.Itoa(p.Row),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Width),
			formatFloat(p.Height),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	numberStyle := lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Label", "Row", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().PaddingRight(1)
			if row >= 0 && row < len(res.Placements) && res.Placements[row].Row%2 == 1 {
				base = base.Foreground(colorGray)
			} else {
				base = base.Foreground(colorWhite)
			}
			if col >= 3 {
				return numberStyle.PaddingRight(1)
			}
			return base
		}).
		Render()
}
