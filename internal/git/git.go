// Package git wraps the git operations mrkt's workflows need: staged diff and
// status, branch creation, commit, push, rebase and merge.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// Runner runs the git binary.
type Runner interface {
	Run(ctx context.Context, dir string, stdout, stderr io.Writer, args ...string) error
}

// ExecRunner runs git with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, stdout, stderr io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Repo is a git working tree.
type Repo struct {
	// Dir is where git commands run. Pathspecs such as "add ." are relative
	// to it, so it is the user's directory rather than the top level.
	Dir string
	// Root is the top-level directory of the working tree.
	Root   string
	Runner Runner
	Log    logrus.FieldLogger

	// Stdout and Stderr receive the output of commands that are not captured,
	// such as push and rebase.
	Stdout io.Writer
	Stderr io.Writer
}

// Open returns a Repo running commands in dir, which must be inside a working
// tree.
func Open(dir string, log logrus.FieldLogger) (*Repo, error) {
	root, err := Root(dir)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Repo{
		Dir:    dir,
		Root:   root,
		Runner: ExecRunner{},
		Log:    log,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Root returns the top-level directory of the working tree containing dir.
func Root(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("git: opening repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git: worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// output runs a git command and returns its stdout. It returns an error
// carrying stderr if the command exits non-zero.
func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	r.log().WithField("args", args).Debug("git")
	if err := r.Runner.Run(ctx, r.Dir, &stdout, &stderr, args...); err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// run executes a git command with its output going to r.Stdout and r.Stderr.
func (r *Repo) run(ctx context.Context, args ...string) error {
	r.log().WithField("args", args).Debug("git")
	if err := r.Runner.Run(ctx, r.Dir, writer(r.Stdout), writer(r.Stderr), args...); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

func (r *Repo) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func writer(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// CurrentBranch returns the name of the checked-out branch. It works on an
// unborn branch and returns ErrDetachedHead when HEAD points at a commit.
func (r *Repo) CurrentBranch() (string, error) {
	repo, err := gogit.PlainOpenWithOptions(r.Dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("git: opening repository: %w", err)
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("git: reading HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}

// StagedDiff returns the diff of the index against HEAD. It is empty when
// nothing is staged.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	return r.output(ctx, "diff", "--cached")
}

// AddAll stages every change under the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	return r.run(ctx, "add", ".")
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string, noVerify bool) error {
	args := []string{"commit", "-m", message}
	if noVerify {
		args = append(args, "--no-verify")
	}
	return r.run(ctx, args...)
}

// CreateBranch creates branch from HEAD and checks it out.
func (r *Repo) CreateBranch(ctx context.Context, branch string) error {
	if err := r.run(ctx, "checkout", "-b", branch); err != nil {
		return fmt.Errorf("create branch %q: %w", branch, err)
	}
	return nil
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	return r.run(ctx, "checkout", branch)
}

// PushUpstream pushes branch to origin and sets it as upstream.
func (r *Repo) PushUpstream(ctx context.Context, branch string) error {
	return r.run(ctx, "push", "-u", "origin", branch)
}

// Push pushes branch to origin.
func (r *Repo) Push(ctx context.Context, branch string, noVerify bool) error {
	args := []string{"push", "origin", branch}
	if noVerify {
		args = append(args, "--no-verify")
	}
	return r.run(ctx, args...)
}

// Fetch fetches branch from origin.
func (r *Repo) Fetch(ctx context.Context, branch string) error {
	return r.run(ctx, "fetch", "origin", branch)
}

// Rebase rebases the current branch onto ref.
func (r *Repo) Rebase(ctx context.Context, ref string) error {
	return r.run(ctx, "rebase", ref)
}

// Merge merges ref into the current branch.
func (r *Repo) Merge(ctx context.Context, ref string) error {
	return r.run(ctx, "merge", ref)
}
