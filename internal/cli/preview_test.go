package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/reflow/pkg/flow"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m previewModel, msg tea.Msg) previewModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(previewModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return pm
}

func TestNewPreviewModel(t *testing.T) {
	if _, err := newPreviewModel("nope", "topLeading", 1); err == nil {
		t.Error("unknown fixture accepted")
	}
	if _, err := newPreviewModel("tags", "diagonal", 1); err == nil {
		t.Error("unknown alignment accepted")
	}

	m, err := newPreviewModel("corner1", "center", 1)
	if err != nil {
		t.Fatalf("newPreviewModel() error: %v", err)
	}
	if m.alignment != flow.Center || len(m.labels) != 3 {
		t.Errorf("model = %+v", m)
	}
}

func TestPreviewModelReflowsWithWidth(t *testing.T) {
	m, err := newPreviewModel("corner1", "topLeading", 1)
	if err != nil {
		t.Fatal(err)
	}

	// 30 + 1 + 10 + 1 + 8 cells fit on one 80-column line.
	res, err := m.layout()
	if err != nil {
		t.Fatalf("layout() error: %v", err)
	}
	if res.Rows != 1 || res.Width != 50 {
		t.Errorf("at 80 columns: %d rows, width %v; want 1 row, width 50", res.Rows, res.Width)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 20})
	res, err = m.layout()
	if err != nil {
		t.Fatalf("layout() error: %v", err)
	}
	if res.Rows != 2 || res.Width != 30 {
		t.Errorf("at 30 columns: %d rows, width %v; want 2 rows, width 30", res.Rows, res.Width)
	}
}

func TestPreviewModelKeys(t *testing.T) {
	m, err := newPreviewModel("tags", "topLeading", 1)
	if err != nil {
		t.Fatal(err)
	}

	m = update(t, m, key("a"))
	if m.alignment != flow.TopTrailing {
		t.Errorf("after a: alignment = %v, want topTrailing", m.alignment)
	}
	m = update(t, m, key("A"))
	m = update(t, m, key("A"))
	if m.alignment != flow.CenterJustify {
		t.Errorf("after A A: alignment = %v, want centerJustify", m.alignment)
	}

	m = update(t, m, key("s"))
	if m.spacingLabel() != "0" {
		t.Errorf("after s: spacing = %s, want 0", m.spacingLabel())
	}

	m = update(t, m, key("f"))
	if m.fixture != 1 || len(m.labels) != 3 {
		t.Errorf("after f: fixture %d with %d labels, want corner1", m.fixture, len(m.labels))
	}

	m = update(t, m, key("r"))
	if len(m.labels) != 3 {
		t.Errorf("shuffle changed the label count to %d", len(m.labels))
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestPreviewModelView(t *testing.T) {
	m, err := newPreviewModel("corner1", "topLeading", 1)
	if err != nil {
		t.Fatal(err)
	}
	view := m.View()
	for _, want := range []string{"reflow preview", "topLeading", "negotiated", "Office"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestCycleAlignment(t *testing.T) {
	all := flow.Alignments()
	tests := []struct {
		from flow.Alignment
		step int
		want flow.Alignment
	}{
		{flow.TopLeading, 1, flow.TopTrailing},
		{flow.TopLeading, -1, all[len(all)-1]},
		{all[len(all)-1], 1, flow.TopLeading},
		{flow.Center, len(all), flow.Center},
	}
	for _, tt := range tests {
		if got := cycleAlignment(tt.from, tt.step); got != tt.want {
			t.Errorf("cycleAlignment(%v, %d) = %v, want %v", tt.from, tt.step, got, tt.want)
		}
	}
}
