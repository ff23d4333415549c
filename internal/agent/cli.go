package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/radvoogh/mrkt/internal/commitmsg"
	"github.com/radvoogh/mrkt/internal/prompts"
)

// cliAgent is a known agent CLI. The diff is handed over as a reference file
// and the output must contain a Conventional-Commit header.
type cliAgent struct {
	name   string
	runner Runner
	log    logrus.FieldLogger

	// args builds the command line arguments around the prompt.
	args func(prompt string) []string
	// extract pulls the message text out of stdout. Nil means stdout as is.
	extract func(stdout string) string
}

func newCopilot(r Runner, log logrus.FieldLogger) Agent {
	return &cliAgent{
		name:   "copilot",
		runner: r,
		log:    logger(log),
		args: func(prompt string) []string {
			return []string{"-p", prompt, "--allow-all-tools"}
		},
	}
}

func newCodex(r Runner, log logrus.FieldLogger) Agent {
	return &cliAgent{
		name:   "codex",
		runner: r,
		log:    logger(log),
		args: func(prompt string) []string {
			return []string{"exec", prompt}
		},
	}
}

func newClaude(r Runner, log logrus.FieldLogger) Agent {
	return &cliAgent{
		name:   "claude",
		runner: r,
		log:    logger(log),
		args: func(prompt string) []string {
			return []string{"-p", prompt, "--output-format", "json"}
		},
		extract: claudeResult,
	}
}

func (a *cliAgent) Name() string { return a.name }

// Generate writes the diff reference, runs the agent and parses its output.
// The reference file is removed on every return path.
func (a *cliAgent) Generate(ctx context.Context, req Request) (string, error) {
	ref, err := writeReference(req.WorkDir, req.Diff, a.log)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAgentUnavailable, a.name, err)
	}
	defer ref.Remove()

	prompt, err := prompts.BuildCommit(prompts.CommitInput{
		DiffFile: ref.Name(),
		Story:    req.Story,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: building prompt: %v", ErrAgentUnavailable, a.name, err)
	}

	out, err := a.runner.Run(ctx, req.WorkDir, a.name, a.args(prompt)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAgentUnavailable, err)
	}
	if a.extract != nil {
		out = a.extract(out)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: %s: empty output", ErrAgentUnavailable, a.name)
	}

	msg, ok := commitmsg.ParseConventional(out)
	if !ok {
		a.log.WithField("agent", a.name).Debugf("unparseable output: %q", out)
		return "", fmt.Errorf("%w: %s", ErrUnparseableOutput, a.name)
	}
	return msg, nil
}

// claudeResult unwraps the "result" field of claude --output-format json.
// Output that is not the JSON envelope is returned unchanged.
func claudeResult(stdout string) string {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &envelope); err != nil || envelope.Result == nil {
		return stdout
	}

	var text string
	if err := json.Unmarshal(envelope.Result, &text); err != nil {
		return string(envelope.Result)
	}
	return text
}
