package git

import (
	"context"
	"strconv"
	"strings"
)

// FileStatus is one staged path and its status code (M, A, D, R, ...).
type FileStatus struct {
	Code string
	Path string
}

// Label returns a readable name for the status code.
func (f FileStatus) Label() string {
	switch f.Code {
	case "M":
		return "Modified"
	case "A":
		return "Added"
	case "D":
		return "Deleted"
	case "R":
		return "Renamed"
	case "C":
		return "Copied"
	default:
		return f.Code
	}
}

// Status summarizes the staged changes.
type Status struct {
	Files     []FileStatus
	Additions int
	Deletions int
}

// StagedStatus lists the staged files and counts added and removed lines.
// It returns nil when nothing is staged.
func (r *Repo) StagedStatus(ctx context.Context) (*Status, error) {
	nameStatus, err := r.output(ctx, "diff", "--cached", "--name-status")
	if err != nil {
		return nil, err
	}
	files := parseNameStatus(nameStatus)
	if len(files) == 0 {
		return nil, nil
	}

	numstat, err := r.output(ctx, "diff", "--cached", "--numstat")
	if err != nil {
		return nil, err
	}
	adds, dels := parseNumstat(numstat)
	return &Status{Files: files, Additions: adds, Deletions: dels}, nil
}

// parseNameStatus parses "git diff --name-status". Renames and copies carry a
// similarity score and two paths; the new path is kept.
func parseNameStatus(out string) []FileStatus {
	var files []FileStatus
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		files = append(files, FileStatus{
			Code: parts[0][:1],
			Path: parts[len(parts)-1],
		})
	}
	return files
}

// parseNumstat sums "git diff --numstat". Binary files report "-" and count
// as zero.
func parseNumstat(out string) (adds, dels int) {
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		a, okA := numstatCount(parts[0])
		d, okD := numstatCount(parts[1])
		if !okA || !okD {
			continue
		}
		adds += a
		dels += d
	}
	return adds, dels
}

func numstatCount(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
