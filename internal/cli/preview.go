package cli

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
	"github.com/matzehuels/reflow/pkg/render"
	"github.com/matzehuels/reflow/pkg/textbox"
)

// Preview styles
var (
	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	previewBoxStyle    = lipgloss.NewStyle().Foreground(colorWhite)
)

// previewSpacings are the spacing settings the preview cycles through;
// nil is negotiated spacing.
var previewSpacings = []*float64{nil, floatPtr(0), floatPtr(1), floatPtr(2), floatPtr(4)}

// defaultPreviewWidth is used until the terminal reports its size.
const defaultPreviewWidth = 80

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		fixture   string
		alignment string
		seed      uint64
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Reflow fixture tags interactively at terminal width",
		Long: `Reflow fixture tags interactively at terminal width.

Tags are measured in terminal cells and wrapped at the width of the window;
resize the terminal to watch them reflow.

Keys:
  a / A    next / previous alignment
  s        cycle spacing (negotiated, 0, 1, 2, 4)
  f        next fixture
  r        shuffle tags
  q        quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newPreviewModel(fixture, alignment, seed)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&fixture, "fixture", "tags", "tag set: "+strings.Join(textbox.FixtureNames(), ", "))
	cmd.Flags().StringVarP(&alignment, "alignment", "a", flow.TopLeading.String(), "initial alignment")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for shuffling")

	return cmd
}

// =============================================================================
// previewModel - Interactive reflow
// =============================================================================

type previewModel struct {
	fixture    int
	labels     []string
	alignment  flow.Alignment
	spacingIdx int
	width      int
	height     int
	rng        *rand.Rand
}

func newPreviewModel(fixture, alignment string, seed uint64) (previewModel, error) {
	m := previewModel{
		width: defaultPreviewWidth,
		rng:   rand.New(rand.NewPCG(seed, seed)),
	}
	a, err := flow.ParseAlignment(alignment)
	if err != nil {
		return m, err
	}
	m.alignment = a

	m.fixture = -1
	for i, name := range textbox.FixtureNames() {
		if name == fixture {
			m.fixture = i
		}
	}
	if m.fixture < 0 {
		return m, fmt.Errorf("unknown fixture %q (use %s)", fixture, strings.Join(textbox.FixtureNames(), ", "))
	}
	m.loadFixture()
	return m, nil
}

func (m *previewModel) loadFixture() {
	labels, _ := textbox.Fixture(textbox.FixtureNames()[m.fixture])
	m.labels = append([]string(nil), labels...)
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "a", "right":
			m.alignment = cycleAlignment(m.alignment, 1)
		case "A", "left":
			m.alignment = cycleAlignment(m.alignment, -1)
		case "s":
			m.spacingIdx = (m.spacingIdx + 1) % len(previewSpacings)
		case "f":
			m.fixture = (m.fixture + 1) % len(textbox.FixtureNames())
			m.loadFixture()
		case "r":
			m.labels = textbox.Shuffled(m.rng, m.labels)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(previewTitleStyle.Render("reflow preview"))
	b.WriteString("\n")

	res, err := m.layout()
	if err != nil {
		b.WriteString(StyleWarning.Render(err.Error()))
		return b.String()
	}

	status := fmt.Sprintf("%s · spacing %s · width %d · %d rows · fixture %s",
		m.alignment, m.spacingLabel(), m.width, res.Rows, textbox.FixtureNames()[m.fixture])
	b.WriteString(previewStatusStyle.Render(status))
	b.WriteString("\n\n")

	grid := render.RenderText(res, render.TextOptions{CellWidth: 1, CellHeight: 1, Labels: true})
	b.WriteString(previewBoxStyle.Render(strings.TrimRight(grid, "\n")))
	b.WriteString("\n\n")
	b.WriteString(previewHelpStyle.Render("a/A alignment  s spacing  f fixture  r shuffle  q quit"))

	return b.String()
}

// layout measures the labels in cells and places them at the terminal
// width.
func (m previewModel) layout() (*document.Result, error) {
	boxes := textbox.CellBoxes(m.labels)
	d := &document.Document{
		Alignment: m.alignment,
		Spacing:   previewSpacings[m.spacingIdx],
		Boxes:     make([]document.BoxSpec, len(boxes)),
	}
	for i, b := range boxes {
		s := b.SizeThatFits(geom.Unspecified)
		d.Boxes[i] = document.BoxSpec{
			ID:     strconv.Itoa(i),
			Label:  m.labels[i],
			Width:  s.Width,
			Height: s.Height,
		}
	}

	f := d.Flow()
	size, rects, err := f.Layout(geom.ProposeWidth(float64(m.width)), boxes)
	if err != nil {
		return nil, err
	}
	return document.NewResult(d, size, rects, f.Rows(size.Width, boxes))
}

func (m previewModel) spacingLabel() string {
	s := previewSpacings[m.spacingIdx]
	if s == nil {
		return "negotiated"
	}
	return formatFloat(*s)
}

func cycleAlignment(a flow.Alignment, step int) flow.Alignment {
	all := flow.Alignments()
	n := len(all)
	return all[((int(a)+step)%n+n)%n]
}

func floatPtr(v float64) *float64 { return &v }
