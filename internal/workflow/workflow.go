// Package workflow implements the start, save and update commands on top of
// git and the commit message generator.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/radvoogh/mrkt/internal/commitmsg"
	"github.com/radvoogh/mrkt/internal/config"
	"github.com/radvoogh/mrkt/internal/console"
	"github.com/radvoogh/mrkt/internal/generator"
	"github.com/radvoogh/mrkt/internal/git"
)

// ErrExclusiveFlags is returned when mutually exclusive options are combined.
var ErrExclusiveFlags = errors.New("mutually exclusive options")

// MessageGenerator produces commit messages. It is satisfied by
// *generator.Generator.
type MessageGenerator interface {
	Generate(ctx context.Context, cfg generator.AgentConfig, req generator.Request) (commitmsg.Message, error)
}

// Workflow bundles what the commands need.
type Workflow struct {
	Repo      *git.Repo
	Config    config.Config
	Generator MessageGenerator
	Console   *console.Printer
	Log       logrus.FieldLogger
}

func (w *Workflow) log() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}

// currentBranch returns the checked-out branch, or the base branch when it
// cannot be determined.
func (w *Workflow) currentBranch() string {
	branch, err := w.Repo.CurrentBranch()
	if err != nil || branch == "" {
		w.log().WithError(err).Debug("current branch unknown, using base branch")
		return w.Config.BaseBranch
	}
	return branch
}

// StartOptions configures the start command.
type StartOptions struct {
	// Name is the branch name without prefix. Empty uses the current branch.
	Name string
	// Kind is a prefix chosen by flag: feat, hotfix or release.
	Kind     string
	Prefix   string
	NoPrefix bool
}

// BranchName builds the full branch name. The prefix is, in order: the custom
// prefix, the kind, the configured prefix.
func BranchName(cfg config.Config, opts StartOptions, name string) string {
	if opts.NoPrefix {
		return name
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = opts.Kind
	}
	if prefix == "" {
		prefix = cfg.Prefix
	}
	if prefix == "" {
		return name
	}
	return prefix + cfg.PrefixSeparator + name
}

// Start creates the branch and pushes it to origin.
func (w *Workflow) Start(ctx context.Context, opts StartOptions) error {
	name := opts.Name
	if name == "" {
		name = w.currentBranch()
	}
	branch := BranchName(w.Config, opts, name)

	w.Console.Infof("Creating branch: %s", branch)
	if err := w.Repo.CreateBranch(ctx, branch); err != nil {
		return err
	}
	w.Console.Infof("Pushing branch to origin...")
	if err := w.Repo.PushUpstream(ctx, branch); err != nil {
		return err
	}
	w.Console.Successf("Branch created and pushed successfully!")
	return nil
}

// SaveOptions configures the save command.
type SaveOptions struct {
	WIP       bool
	Rebase    bool
	Merge     bool
	StoryPath string
}

// Save stages everything, optionally syncs with the base branch, and commits
// with a generated message.
func (w *Workflow) Save(ctx context.Context, opts SaveOptions) error {
	if opts.Rebase && opts.Merge {
		return fmt.Errorf("%w: only one of --rebase or --merge can be used", ErrExclusiveFlags)
	}

	w.Console.Infof("Staging all changes...")
	if err := w.Repo.AddAll(ctx); err != nil {
		return err
	}
	if err := w.printStatus(ctx); err != nil {
		return err
	}

	base := w.Config.BaseBranch
	switch {
	case opts.Rebase:
		w.Console.Infof("Rebasing on %s...", base)
		if err := w.syncBase(ctx, w.Repo.Rebase); err != nil {
			return err
		}
	case opts.Merge:
		w.Console.Infof("Merging %s into branch...", base)
		if err := w.syncBase(ctx, w.Repo.Merge); err != nil {
			return err
		}
	}

	msg, err := w.message(ctx, opts.StoryPath)
	if err != nil {
		return err
	}

	final := msg.Text
	if opts.WIP {
		final = "WIP: " + final
	}
	w.Console.Preview(final)

	if err := w.Repo.Commit(ctx, final, w.Config.SkipCommitHooks()); err != nil {
		return err
	}
	w.Console.Successf("Changes committed successfully!")
	return nil
}

func (w *Workflow) syncBase(ctx context.Context, apply func(context.Context, string) error) error {
	base := w.Config.BaseBranch
	if err := w.Repo.Fetch(ctx, base); err != nil {
		return err
	}
	return apply(ctx, "origin/"+base)
}

func (w *Workflow) printStatus(ctx context.Context) error {
	if w.Console.Quiet {
		return nil
	}
	st, err := w.Repo.StagedStatus(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}
	w.Console.Infof("\nStaged %d file(s):", len(st.Files))
	for _, f := range st.Files {
		w.Console.Infof("  [%s] %s", f.Label(), f.Path)
	}
	w.Console.Infof("\n+%d lines added, -%d lines removed\n", st.Additions, st.Deletions)
	return nil
}

func (w *Workflow) message(ctx context.Context, storyPath string) (commitmsg.Message, error) {
	diff, err := w.Repo.StagedDiff(ctx)
	if err != nil {
		return commitmsg.Message{}, err
	}
	story, err := LoadStory(storyPath)
	if err != nil {
		return commitmsg.Message{}, err
	}
	if storyPath != "" && story == "" {
		w.log().WithField("path", storyPath).Warn("story file missing or empty, continuing without it")
	}

	return w.Generator.Generate(ctx, generator.AgentConfig{
		Name:    w.Config.Agent,
		Path:    w.Config.AgentPath,
		Timeout: w.Config.AgentTimeout,
	}, generator.Request{
		Diff:      diff,
		Story:     story,
		StoryPath: storyPath,
		WorkDir:   w.Repo.Dir,
		Quiet:     w.Console.Quiet,
	})
}

// LoadStory reads the story file at path. A missing file yields "" and no
// error.
func LoadStory(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading story file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// UpdateOptions configures the update command.
type UpdateOptions struct {
	SaveOptions
	// Close merges the branch into the base branch before pushing.
	Close bool
}

// Update saves, optionally merges into the base branch, and pushes.
func (w *Workflow) Update(ctx context.Context, opts UpdateOptions) error {
	n := 0
	for _, set := range []bool{opts.Close, opts.Rebase, opts.Merge} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%w: only one of --close, --rebase, or --merge can be used", ErrExclusiveFlags)
	}

	if err := w.Save(ctx, opts.SaveOptions); err != nil {
		return err
	}

	branch := w.currentBranch()
	if opts.Close {
		base := w.Config.BaseBranch
		w.Console.Infof("Merging to %s branch...", base)
		if err := w.Repo.Checkout(ctx, base); err != nil {
			return err
		}
		if err := w.Repo.Merge(ctx, branch); err != nil {
			return err
		}
		branch = base
	}

	w.Console.Infof("Pushing to origin/%s...", branch)
	if err := w.Repo.Push(ctx, branch, w.Config.SkipPushHooks()); err != nil {
		return err
	}
	w.Console.Successf("Changes updated successfully!")
	return nil
}
