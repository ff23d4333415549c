package commitmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConventional(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"no header", "Thinking...\nAll done.", "", false},
		{"header only", "feat: add login", "feat: add login", true},
		{"noise before header", "Thinking...\nfeat(core): add login\nmore detail", "feat(core): add login\nmore detail", true},
		{"breaking with scope", "fix(api)!: drop v1 routes\n\nBody", "fix(api)!: drop v1 routes\n\nBody", true},
		{"breaking without scope", "chore!: bump go", "chore!: bump go", true},
		{"uppercase type", "FEAT: shout", "FEAT: shout", true},
		{"indented header", "  refactor(x): tidy  \nbody\n\n", "refactor(x): tidy  \nbody", true},
		{"missing description", "feat: ", "", false},
		{"missing space", "feat:add", "", false},
		{"digits in type", "v2: nope", "", false},
		{"crlf", "banner\r\ndocs: update readme\r\nline", "docs: update readme\nline", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseConventional(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConventional_FirstLineIsHeader(t *testing.T) {
	inputs := []string{
		"tool call: read_file\nfeat(ui): add dark mode\n\n- Theme toggle",
		"Running...\n\nfix: handle nil config\nfeat: second header",
	}
	for _, in := range inputs {
		got, ok := ParseConventional(in)
		require.True(t, ok)
		first, _, _ := strings.Cut(got, "\n")
		assert.True(t, IsHeader(first), "first line %q", first)
	}
}

func TestParseConventional_Idempotent(t *testing.T) {
	once, ok := ParseConventional("noise\nfeat(core): add login\n\n- detail one\n- detail two\n")
	require.True(t, ok)

	twice, ok := ParseConventional(once)
	require.True(t, ok)
	assert.Equal(t, once, twice)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		diff string
		want string
	}{
		{"single file", "diff --git a/foo b/foo\n", "Update foo"},
		{"nested path", "diff --git a/internal/x.go b/internal/x.go\nindex 1..2\n--- a/internal/x.go\n+++ b/internal/x.go\n", "Update internal/x.go"},
		{"two files", "diff --git a/foo b/foo\ndiff --git a/bar b/bar\n", "Update 2 files"},
		{"same file twice counts twice", "diff --git a/foo b/foo\ndiff --git a/foo b/foo\n", "Update 2 files"},
		{"no markers", "just some text\n", "Update files"},
		{"empty", "", "Update files"},
		{"truncated marker", "diff --git a/foo\n", "Update files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.diff))
		})
	}
}

func TestChangedFiles_PreservesOrder(t *testing.T) {
	diff := "diff --git a/b.go b/b.go\n+x\ndiff --git a/a.go b/a.go\n+y\n"
	assert.Equal(t, []string{"b.go", "a.go"}, ChangedFiles(diff))
}
