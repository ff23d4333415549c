// Package agent invokes external AI CLI agents to draft commit messages.
// Each supported backend is an Agent; unknown names fall back to a generic
// adapter that passes the prompt with -p.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAgentUnavailable reports that the agent process could not be started,
	// exited non-zero, timed out or printed nothing.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrUnparseableOutput reports that the agent printed no Conventional-Commit
	// header.
	ErrUnparseableOutput = errors.New("agent output has no conventional commit header")
)

// Request is the input to a single generation attempt.
type Request struct {
	// Diff is the staged diff. Callers guarantee it is non-empty.
	Diff string
	// Story is optional free-form context for the agent.
	Story string
	// WorkDir is where the agent runs and where reference files are written.
	WorkDir string
}

// Agent drafts a commit message for a staged diff.
type Agent interface {
	Name() string
	// Generate returns the drafted commit message. Any failure is reported as
	// an error wrapping ErrAgentUnavailable or ErrUnparseableOutput.
	Generate(ctx context.Context, req Request) (string, error)
}

// Runner runs an external process and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// DefaultWaitDelay is how long Run waits for output pipes to close after the
// agent has been killed.
const DefaultWaitDelay = 5 * time.Second

// ExecRunner runs processes with os/exec.
type ExecRunner struct {
	Log logrus.FieldLogger
	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
}

// Run executes name with args in dir. A non-zero exit is an error carrying
// the process stderr. Context cancellation kills the process and, where the
// platform allows it, every process it started.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	killProcessGroup(cmd)
	cmd.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger(r.Log).WithFields(logrus.Fields{"cmd": name, "dir": dir}).Debug("running agent")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", name, ctxErr)
		}
		return "", fmt.Errorf("%s: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

type factory func(r Runner, log logrus.FieldLogger) Agent

var registry = map[string]factory{
	"copilot": newCopilot,
	"codex":   newCodex,
	"claude":  newClaude,
}

// Known returns the names of the built-in agents, sorted.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the built-in agent registered under name.
func New(name string, r Runner, log logrus.FieldLogger) (Agent, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(r, log), true
}

func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
