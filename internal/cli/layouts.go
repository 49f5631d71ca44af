package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/store"
)

// layoutsCommand creates the command group for saved documents.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Manage saved documents",
		Long: `Manage saved documents.

Documents are kept as JSON files under ~/.config/reflow/layouts (or
$XDG_CONFIG_HOME/reflow/layouts) and addressed by id.`,
	}

	cmd.AddCommand(c.layoutsSaveCommand())
	cmd.AddCommand(c.layoutsListCommand())
	cmd.AddCommand(c.layoutsShowCommand())
	cmd.AddCommand(c.layoutsDeleteCommand())

	return cmd
}

func (c *CLI) layoutsSaveCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save [document]",
		Short: "Save a document and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDocument(args[0])
			if err != nil {
				return fmt.Errorf("load document %s: %w", args[0], err)
			}
			if name != "" {
				d.Name = name
			}
			// Saving always creates a new entry.
			d.ID = ""

			st, err := newStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Put(cmd.Context(), d); err != nil {
				return err
			}
			c.Logger.Debug("saved document", "id", d.ID, "boxes", len(d.Boxes), "dir", st.Path())
			fmt.Fprintln(cmd.OutOrStdout(), d.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to save the document under")

	return cmd
}

func (c *CLI) layoutsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore()
			if err != nil {
				return err
			}
			defer st.Close()
			summaries, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No saved documents")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(summaries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of documents")

	return cmd
}

func (c *CLI) layoutsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore()
			if err != nil {
				return err
			}
			defer st.Close()
			d, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return document.Write(d, cmd.OutOrStdout(), document.Format(format))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(document.FormatJSON), "output encoding: json, toml")

	return cmd
}

func (c *CLI) layoutsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a saved document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

func summaryTable(summaries []store.Summary) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.ID, s.Name, strconv.Itoa(s.Boxes), s.CreatedAt.Local().Format("Jan 2, 2006 15:04")}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Boxes", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
