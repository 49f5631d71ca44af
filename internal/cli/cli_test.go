package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/cache"
	rerrors "github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/geom"
)

const testDocJSON = `{
  "alignment": "topLeading",
  "spacing": 10,
  "width": 220,
  "boxes": [
    {"id": "a", "width": 100, "height": 40},
    {"id": "b", "width": 100, "height": 40},
    {"id": "c", "width": 50, "height": 40}
  ]
}`

// isolate points every per-user directory and backend variable at test
// locations.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envAddr, "")
	t.Setenv(envRedisAddr, "")
	t.Setenv(envMongoURI, "")
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(testDocJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"measure", "place", "render", "inspect", "check", "preview", "layouts", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMeasureCommand(t *testing.T) {
	isolate(t)
	doc := writeDoc(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"document settings", []string{"measure", doc}, "210x90\n"},
		{"width override", []string{"measure", doc, "--width", "100"}, "100x140\n"},
		{"no cache", []string{"measure", doc, "--no-cache"}, "210x90\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("measure error: %v", err)
			}
			if out != tt.want {
				t.Errorf("measure output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestMeasureCommandJSON(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "measure", writeDoc(t), "--json")
	if err != nil {
		t.Fatalf("measure --json error: %v", err)
	}
	var got struct {
		Width, Height float64
		Rows          int
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Width != 210 || got.Height != 90 || got.Rows != 2 {
		t.Errorf("measure --json = %+v, want 210x90 in 2 rows", got)
	}
}

func TestMeasureCommandMissingFile(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "measure", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("measure of a missing file succeeded")
	}
}

func TestPlaceCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "place", writeDoc(t), "--alignment", "topTrailing")
	if err != nil {
		t.Fatalf("place error: %v", err)
	}
	var got struct {
		Width      float64 `json:"width"`
		Placements []struct {
			ID  string  `json:"id"`
			X   float64 `json:"x"`
			Y   float64 `json:"y"`
			Row int     `json:"row"`
		} `json:"placements"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Placements) != 3 {
		t.Fatalf("got %d placements, want 3", len(got.Placements))
	}
	c := got.Placements[2]
	if c.ID != "c" || c.X != 160 || c.Y != 50 || c.Row != 1 {
		t.Errorf("placement c = %+v, want x 160, y 50, row 1", c)
	}
}

func TestPlaceCommandASCII(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "place", writeDoc(t), "--ascii", "--cell-width", "10", "--cell-height", "10")
	if err != nil {
		t.Fatalf("place --ascii error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "+--------+ +--------+" {
		t.Errorf("first row = %q, want frames of a and b", lines[0])
	}
	if !strings.Contains(out, "+---+") {
		t.Errorf("output has no frame for c:\n%s", out)
	}
}

func TestInspectCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "inspect", writeDoc(t), "--alignment", "center")
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"Alignment", "center", "Spacing", "210x90", "Label", "Row"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestPlaceCommandOutputFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "result.json")
	if _, err := runCLI(t, "place", writeDoc(t), "-o", path); err != nil {
		t.Fatalf("place -o error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if !strings.Contains(string(data), `"placements"`) {
		t.Errorf("result file has no placements:\n%s", data)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	doc := writeDoc(t)
	out := filepath.Join(t.TempDir(), "layout")
	if _, err := runCLI(t, "render", doc, "-f", "svg,dot", "-o", out); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, ext := range []string{"svg", "dot"} {
		if _, err := os.Stat(out + "." + ext); err != nil {
			t.Errorf("missing %s artifact: %v", ext, err)
		}
	}
}

func TestRenderCommandBadFormat(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "render", writeDoc(t), "-f", "gif"); err == nil {
		t.Error("render with an unknown format succeeded")
	}
}

func TestCheckCommand(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "check", writeDoc(t)); err != nil {
		t.Errorf("check error: %v", err)
	}
	if _, err := runCLI(t, "check", "--random", "100", "--seed", "42"); err != nil {
		t.Errorf("check --random error: %v", err)
	}
	if _, err := runCLI(t, "check"); err == nil {
		t.Error("check without a document or --random succeeded")
	}
	if _, err := runCLI(t, "check", "--random", "0"); err == nil {
		t.Error("check --random 0 succeeded")
	}
}

func TestLayoutsCommands(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "layouts", "save", writeDoc(t), "--name", "demo")
	if err != nil {
		t.Fatalf("layouts save error: %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("layouts save printed no id")
	}

	out, err = runCLI(t, "layouts", "list")
	if err != nil {
		t.Fatalf("layouts list error: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "demo") {
		t.Errorf("layouts list does not show %s:\n%s", id, out)
	}

	out, err = runCLI(t, "layouts", "show", id, "--format", "toml")
	if err != nil {
		t.Fatalf("layouts show error: %v", err)
	}
	if !strings.Contains(out, "[[boxes]]") {
		t.Errorf("layouts show --format toml:\n%s", out)
	}

	if _, err := runCLI(t, "layouts", "rm", id); err != nil {
		t.Fatalf("layouts rm error: %v", err)
	}
	if _, err := runCLI(t, "layouts", "show", id); err == nil {
		t.Error("layouts show after rm succeeded")
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "reflow") {
		t.Errorf("bash completion does not mention reflow")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("completion for an unsupported shell succeeded")
	}
}

func TestCachePathCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheInfoAndClear(t *testing.T) {
	isolate(t)
	statusOut = io.Discard
	t.Cleanup(func() { statusOut = os.Stderr })

	if out, err := runCLI(t, "cache", "info"); err != nil || out != "" {
		t.Fatalf("cache info before use = %q, %v", out, err)
	}
	if _, err := runCLI(t, "measure", writeDoc(t)); err != nil {
		t.Fatalf("measure error: %v", err)
	}

	out, err := runCLI(t, "cache", "info")
	if err != nil {
		t.Fatalf("cache info error: %v", err)
	}
	entries := ""
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) == 2 && f[0] == "entries" {
			entries = f[1]
		}
	}
	if entries == "" || entries == "0" {
		t.Errorf("cache info = %q, want a non-empty cache", out)
	}

	for _, args := range [][]string{{"cache", "clear", "--expired"}, {"cache", "clear"}} {
		if _, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v error: %v", args, err)
		}
	}
	dir, _ := cacheDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n, _, _ := fc.Stats(); n != 0 {
		t.Errorf("%d entries left after cache clear", n)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1 KiB",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5 MiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLayoutFlagsOptions(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantSpacing *float64
		wantWidth   *float64
		wantAlign   string
		wantNeg     bool
	}{
		{"defaults", nil, nil, nil, "", false},
		{"zero spacing is an override", []string{"--spacing", "0"}, floatPtr(0), nil, "", false},
		{"width", []string{"-w", "320"}, nil, floatPtr(320), "", false},
		{"alignment and negotiated", []string{"-a", "center", "--negotiated"}, nil, nil, "center", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags layoutFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}
			opts := flags.options(cmd)
			if !equalPtr(opts.Spacing, tt.wantSpacing) {
				t.Errorf("Spacing = %v, want %v", opts.Spacing, tt.wantSpacing)
			}
			if !equalPtr(opts.Width, tt.wantWidth) {
				t.Errorf("Width = %v, want %v", opts.Width, tt.wantWidth)
			}
			if opts.Alignment != tt.wantAlign {
				t.Errorf("Alignment = %q, want %q", opts.Alignment, tt.wantAlign)
			}
			if opts.Negotiated != tt.wantNeg {
				t.Errorf("Negotiated = %v, want %v", opts.Negotiated, tt.wantNeg)
			}
		})
	}
}

func equalPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, png,dot", []string{"svg", "png", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestArtifactPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		input   string
		output  string
		want    map[string]string
	}{
		{
			name:    "single format uses output verbatim",
			formats: []string{"png"},
			input:   "tags.json",
			output:  "out/picture",
			want:    map[string]string{"png": "out/picture"},
		},
		{
			name:    "several formats share a base",
			formats: []string{"svg", "png"},
			input:   "tags.json",
			output:  "out/tags.svg",
			want:    map[string]string{"svg": "out/tags.svg", "png": "out/tags.png"},
		},
		{
			name:    "no output derives from input",
			formats: []string{"svg"},
			input:   "docs/tags.toml",
			want:    map[string]string{"svg": "docs/tags.svg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPaths(tt.formats, tt.input, tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("artifactPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("artifactPaths()[%q] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	if got := formatSize(geom.Sz(210, 90)); got != "210x90" {
		t.Errorf("formatSize = %q, want 210x90", got)
	}
	if got := formatFloat(1.0 / 3); got != "0.33" {
		t.Errorf("formatFloat(1/3) = %q, want 0.33", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("render: %w", context.Canceled), ExitInterrupted},
		{"invalid document", fmt.Errorf("load: %w", rerrors.New(rerrors.ErrCodeInvalidDocument, "bad")), ExitInvalid},
		{"invalid spacing", rerrors.New(rerrors.ErrCodeInvalidSpacing, "negative"), ExitInvalid},
		{"document not found", rerrors.New(rerrors.ErrCodeDocumentNotFound, "gone"), ExitNotFound},
		{"plain", errors.New("disk full"), ExitError},
		{"internal", rerrors.New(rerrors.ErrCodeInternal, "bug"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVerboseFlag(t *testing.T) {
	isolate(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"measure", writeDoc(t), "-v"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("measure -v error: %v", err)
	}
	if !strings.Contains(logs.String(), "measured") {
		t.Errorf("debug log missing with -v:\n%s", logs.String())
	}
}
