// Package commitmsg extracts Conventional-Commit messages from agent output
// and synthesizes fallback messages from a staged diff.
package commitmsg

import (
	"fmt"
	"regexp"
	"strings"
)

// Message is a commit message ready to hand to git.
type Message struct {
	Text string
	// Agent names the adapter that produced Text. Empty for fallback messages.
	Agent string
	// Fallback is true when Text was synthesized by Summarize.
	Fallback bool
}

// headerPattern matches headers like "feat: x", "fix(scope): x" and "chore!: x".
var headerPattern = regexp.MustCompile(`(?i)^[a-z]+(\([^)]*\))?!?:\s+.+$`)

// IsHeader reports whether line is a Conventional-Commit header.
func IsHeader(line string) bool {
	return headerPattern.MatchString(strings.TrimSpace(line))
}

// ParseConventional returns the text starting at the first Conventional-Commit
// header in raw, through the end of raw, trimmed. Anything the agent printed
// before the header is dropped. It returns false when raw is empty or no line
// matches.
func ParseConventional(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if IsHeader(line) {
			return strings.TrimSpace(strings.Join(lines[i:], "\n")), true
		}
	}
	return "", false
}

const diffHeaderPrefix = "diff --git"

// ChangedFiles returns the destination path of every "diff --git" header in
// diff, in order of appearance. Duplicates are kept.
func ChangedFiles(diff string) []string {
	var files []string
	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, diffHeaderPrefix) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		files = append(files, strings.TrimPrefix(fields[3], "b/"))
	}
	return files
}

// Summarize builds a deterministic message from the files named in diff.
func Summarize(diff string) string {
	files := ChangedFiles(diff)
	switch len(files) {
	case 0:
		return "Update files"
	case 1:
		return "Update " + files[0]
	default:
		return fmt.Sprintf("Update %d files", len(files))
	}
}
