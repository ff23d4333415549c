package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/radvoogh/mrkt/internal/prompts"
)

// Generic is the adapter for any agent without a built-in definition. It runs
// "<command> -p <prompt>" with the diff inlined and returns trimmed stdout
// without validating it.
type Generic struct {
	// Command is the executable, optionally followed by extra arguments.
	Command string
	Runner  Runner
	Log     logrus.FieldLogger
}

// NewGeneric returns a Generic adapter for command.
func NewGeneric(command string, r Runner, log logrus.FieldLogger) *Generic {
	return &Generic{Command: command, Runner: r, Log: logger(log)}
}

func (g *Generic) Name() string { return strings.TrimSpace(g.Command) }

func (g *Generic) Generate(ctx context.Context, req Request) (string, error) {
	fields := g.command()
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: no agent command configured", ErrAgentUnavailable)
	}

	prompt, err := prompts.BuildCommit(prompts.CommitInput{Diff: req.Diff, Story: req.Story})
	if err != nil {
		return "", fmt.Errorf("%w: %s: building prompt: %v", ErrAgentUnavailable, fields[0], err)
	}

	args := append(fields[1:], "-p", prompt)
	out, err := g.Runner.Run(ctx, req.WorkDir, fields[0], args...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAgentUnavailable, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: %s: empty output", ErrAgentUnavailable, fields[0])
	}
	return out, nil
}

// command splits Command into the executable and its extra arguments. A
// Command that is itself an executable, such as a path containing spaces, is
// not split.
func (g *Generic) command() []string {
	whole := strings.TrimSpace(g.Command)
	if whole == "" {
		return nil
	}
	if _, err := exec.LookPath(whole); err == nil {
		return []string{whole}
	}
	return strings.Fields(whole)
}
