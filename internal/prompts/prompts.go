// Package prompts provides access to embedded prompt templates and builds the
// commit-message prompt handed to agents. Embedded files can be overridden at
// runtime via the SetOverride function.
package prompts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/radvoogh/mrkt/embedded"
)

// CommitMessage is the name of the embedded commit-message instructions.
const CommitMessage = "commit-message.md"

var (
	overrides   = make(map[string]string)
	overridesMu sync.RWMutex
)

// SetOverride registers a local file path to override an embedded file.
// When Get is called with the given name, the content of the local file
// at path is returned instead of the embedded content. An empty path
// removes the override.
func SetOverride(name, path string) {
	overridesMu.Lock()
	defer overridesMu.Unlock()
	if path == "" {
		delete(overrides, name)
		return
	}
	overrides[name] = path
}

// Get returns the content of the named prompt file. If an override has been
// set for the name, the override file is read from disk. Otherwise, the
// embedded file is returned.
func Get(name string) (string, error) {
	overridesMu.RLock()
	path, ok := overrides[name]
	overridesMu.RUnlock()

	if ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading override for %q: %w", name, err)
		}
		return string(data), nil
	}

	data, err := embedded.FS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("reading embedded file %q: %w", name, err)
	}
	return string(data), nil
}

// CommitInput is the material a commit-message prompt is built from.
type CommitInput struct {
	// Diff is the staged diff. It is inlined unless DiffFile is set.
	Diff string
	// DiffFile, when set, is a path the agent can read the diff from. The
	// prompt references it as @DiffFile instead of inlining the diff.
	DiffFile string
	// Story is optional free-form context prepended to the prompt.
	Story string
}

// BuildCommit assembles the commit-message prompt: an optional story context
// block, the instructions, then the diff or a reference to it.
func BuildCommit(in CommitInput) (string, error) {
	instructions, err := Get(CommitMessage)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if story := strings.TrimSpace(in.Story); story != "" {
		b.WriteString("Story context:\n")
		b.WriteString(story)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n")

	if in.DiffFile != "" {
		fmt.Fprintf(&b, "The staged changes are in @%s\n", in.DiffFile)
		return b.String(), nil
	}
	b.WriteString("Staged changes:\n\n")
	b.WriteString(in.Diff)
	if !strings.HasSuffix(in.Diff, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
