package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reflow/pkg/geom"
)

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue is used for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning is used for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh       = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
	iconArrow  = "→"
)

// statusIcons maps a status kind to its icon.
var statusIcons = map[string]string{
	"success": lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	"error":   lipgloss.NewStyle().Foreground(colorRed).Render("✗"),
	"info":    lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

// =============================================================================
// Status Output
// =============================================================================

// statusOut receives status lines. Command results go to the command's
// stdout instead, so they can be piped.
var statusOut io.Writer = os.Stderr

func status(kind, format string, args ...any) {
	fmt.Fprintln(statusOut, statusIcons[kind]+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status("success", format, args...) }

func printError(format string, args ...any) { status("error", format, args...) }

func printInfo(format string, args ...any) { status("info", format, args...) }

// printDetail prints an indented, muted line under the last status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printStats prints box count, row count, size and cache state on one
// line.
func printStats(boxCount, rowCount int, size geom.Size, cached bool) {
	state := styleFresh.Render(iconFresh)
	if cached {
		state = styleCached.Render(iconCached)
	}
	sep := StyleDim.Render(" · ")
	fmt.Fprintln(statusOut, "  "+strings.Join([]string{
		StyleDim.Render(fmt.Sprintf("%d boxes", boxCount)),
		StyleDim.Render(fmt.Sprintf("%d rows", rowCount)),
		StyleDim.Render(formatSize(size)),
		state,
	}, sep))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(statusOut)
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValues writes aligned "key value" lines to w.
func printKeyValues(w io.Writer, pairs [][2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, lipgloss.Width(kv[0]))
	}
	key := styleKey.Width(width + 2)
	for _, kv := range pairs {
		fmt.Fprintln(w, key.Render(kv[0])+StyleValue.Render(kv[1]))
	}
}

// =============================================================================
// Formatting
// =============================================================================

// formatSize renders a size as "WxH" with at most two decimals.
func formatSize(s geom.Size) string {
	return formatFloat(s.Width) + "x" + formatFloat(s.Height)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
