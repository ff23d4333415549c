package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPrinter(quiet bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut, Quiet: quiet}, &out, &errOut
}

func TestPrinter(t *testing.T) {
	p, out, errOut := newTestPrinter(false)

	p.Infof("Staged %d file(s):", 2)
	p.Successf("done")
	p.Errorf("boom %s", "here")

	assert.Contains(t, out.String(), "Staged 2 file(s):\n")
	assert.Contains(t, out.String(), "done")
	assert.Contains(t, errOut.String(), "Error: boom here")
}

func TestPrinter_Quiet(t *testing.T) {
	p, out, errOut := newTestPrinter(true)

	p.Infof("hidden")
	p.Successf("hidden")
	p.Preview("feat: hidden")
	p.Errorf("shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: shown")
}

func TestPreview(t *testing.T) {
	p, out, _ := newTestPrinter(false)
	p.Preview("feat: add login\n\nbody")

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Commit message preview:\n"))
	assert.Contains(t, got, "feat: add login\n\nbody\n")
	assert.Equal(t, 2, strings.Count(got, strings.Repeat("─", dividerWidth)))
}

func TestResolveQuiet(t *testing.T) {
	tests := []struct {
		verbose, quiet, always, want bool
	}{
		{false, false, false, false},
		{false, false, true, true},
		{false, true, false, true},
		{true, true, true, false},
		{true, false, true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveQuiet(tt.verbose, tt.quiet, tt.always), "%+v", tt)
	}
}
