// Package generator selects the configured agent, asks it for a commit
// message and falls back to a summary of the changed files when the agent
// yields nothing usable.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/radvoogh/mrkt/internal/agent"
	"github.com/radvoogh/mrkt/internal/commitmsg"
)

// ErrNoStagedChanges is returned when there is no diff to describe.
var ErrNoStagedChanges = errors.New("no staged changes to commit")

// DefaultTimeout bounds a single agent invocation when AgentConfig.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// AgentConfig selects and bounds the agent.
type AgentConfig struct {
	// Name is a built-in agent name or a command for the generic adapter.
	Name string
	// Path, when set, is run through the generic adapter regardless of Name.
	Path    string
	Timeout time.Duration
}

// Request describes one generation attempt.
type Request struct {
	Diff  string
	Story string
	// StoryPath is only used in notices.
	StoryPath string
	WorkDir   string
	Quiet     bool
}

// Notifier receives human-readable progress notices.
type Notifier interface {
	Infof(format string, args ...any)
}

// Generator turns staged diffs into commit messages.
type Generator struct {
	Runner agent.Runner
	Notify Notifier
	Log    logrus.FieldLogger

	// Select resolves the agent for a config. Nil means Select.
	Select func(cfg AgentConfig, r agent.Runner, log logrus.FieldLogger) agent.Agent
}

// New returns a Generator running agents as local processes.
func New(notify Notifier, log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{
		Runner: agent.ExecRunner{Log: log},
		Notify: notify,
		Log:    log,
	}
}

// Select picks the adapter for cfg. A path override or an unknown name goes
// to the generic adapter.
func Select(cfg AgentConfig, r agent.Runner, log logrus.FieldLogger) agent.Agent {
	if cfg.Path != "" {
		return agent.NewGeneric(cfg.Path, r, log)
	}
	if a, ok := agent.New(cfg.Name, r, log); ok {
		return a
	}
	return agent.NewGeneric(cfg.Name, r, log)
}

// Generate returns a commit message for req.Diff. Every agent failure
// degrades to commitmsg.Summarize; the only errors are ErrNoStagedChanges and
// the error of ctx once it is done.
func (g *Generator) Generate(ctx context.Context, cfg AgentConfig, req Request) (commitmsg.Message, error) {
	if strings.TrimSpace(req.Diff) == "" {
		return commitmsg.Message{}, ErrNoStagedChanges
	}

	log := g.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sel := g.Select
	if sel == nil {
		sel = Select
	}
	a := sel(cfg, g.Runner, log)

	g.notice(req, "\nGenerating commit message with AI...")
	g.notice(req, "Context being used:")
	g.notice(req, "  - Git diff (staged changes)")
	g.notice(req, "  - AI Agent: %s", a.Name())
	if req.Story != "" && req.StoryPath != "" {
		g.notice(req, "  - Story file: %s", req.StoryPath)
	}
	g.notice(req, "")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := a.Generate(runCtx, agent.Request{
		Diff:    req.Diff,
		Story:   req.Story,
		WorkDir: req.WorkDir,
	})
	if err == nil {
		log.WithField("agent", a.Name()).Debug("agent produced commit message")
		g.notice(req, "Commit message generated by %s", a.Name())
		return commitmsg.Message{Text: text, Agent: a.Name()}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return commitmsg.Message{}, ctxErr
	}

	log.WithError(err).WithField("agent", a.Name()).Warn("falling back to file summary")
	g.notice(req, "AI agent did not return a usable message, using a summary of the changed files.")
	return commitmsg.Message{Text: commitmsg.Summarize(req.Diff), Fallback: true}, nil
}

func (g *Generator) notice(req Request, format string, args ...any) {
	if req.Quiet || g.Notify == nil {
		return
	}
	g.Notify.Infof(format, args...)
}
