package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/radvoogh/mrkt/internal/config"
	"github.com/radvoogh/mrkt/internal/console"
	"github.com/radvoogh/mrkt/internal/generator"
	"github.com/radvoogh/mrkt/internal/git"
	"github.com/radvoogh/mrkt/internal/prompts"
	"github.com/radvoogh/mrkt/internal/workflow"
)

// CLI defines the top-level command structure for mrkt.
type CLI struct {
	Quiet           bool     `help:"Only error messages are printed." short:"q"`
	Verbose         bool     `help:"Show all messages, including debug logs." short:"v"`
	WorkDir         string   `help:"Working directory." default:"." name:"work-dir" type:"existingdir"`
	PromptOverrides []string `help:"Override an embedded prompt file: name=path (e.g. commit-message.md=/tmp/my-prompt.md)." name:"prompt-override"`

	Start  StartCmd  `cmd:"" help:"Create a branch and push it to origin."`
	Save   SaveCmd   `cmd:"" help:"Create a commit with an AI-generated message (no push)."`
	Update UpdateCmd `cmd:"" help:"Create a commit with an AI-generated message and push to origin."`
	Help   HelpCmd   `cmd:"" default:"1" help:"Show help."`
}

// AfterApply registers any prompt overrides before subcommands run.
func (c *CLI) AfterApply() error {
	for _, override := range c.PromptOverrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --prompt-override format %q: expected name=path", override)
		}
		prompts.SetOverride(parts[0], parts[1])
	}
	return nil
}

// workflow wires the repository, configuration, console and generator.
func (c *CLI) workflow() (*workflow.Workflow, error) {
	log := newLogger(c.Verbose)

	wd, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return nil, err
	}
	repo, err := git.Open(wd, log)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(wd, repo.Root, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	out := console.New(console.ResolveQuiet(c.Verbose, c.Quiet, cfg.AlwaysQuiet))
	return &workflow.Workflow{
		Repo:      repo,
		Config:    cfg,
		Generator: generator.New(out, log),
		Console:   out,
		Log:       log,
	}, nil
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// StartCmd implements the 'start' subcommand.
type StartCmd struct {
	BranchName string `arg:"" optional:"" help:"Name of the branch to create. Defaults to the current branch."`
	Feat       bool   `help:"Use feat as prefix." xor:"kind"`
	Hotfix     bool   `help:"Use hotfix as prefix." xor:"kind"`
	Release    bool   `help:"Use release as prefix." xor:"kind"`
	Prefix     string `help:"Define a custom prefix."`
	NoPrefix   bool   `help:"Don't add any prefix." name:"no-prefix"`
}

func (s *StartCmd) Run(globals *CLI, ctx context.Context) error {
	wf, err := globals.workflow()
	if err != nil {
		return err
	}
	return wf.Start(ctx, workflow.StartOptions{
		Name:     s.BranchName,
		Kind:     s.kind(),
		Prefix:   s.Prefix,
		NoPrefix: s.NoPrefix,
	})
}

func (s *StartCmd) kind() string {
	switch {
	case s.Feat:
		return "feat"
	case s.Hotfix:
		return "hotfix"
	case s.Release:
		return "release"
	}
	return ""
}

// SaveCmd implements the 'save' subcommand.
type SaveCmd struct {
	WIP    bool   `help:"Add WIP in the title of the message." name:"wip"`
	Rebase bool   `help:"Rebase on the base branch before commit."`
	Merge  bool   `help:"Merge the base branch into this branch before commit."`
	Story  string `help:"Path to story definition file for context." type:"path"`
}

func (s *SaveCmd) options() workflow.SaveOptions {
	return workflow.SaveOptions{WIP: s.WIP, Rebase: s.Rebase, Merge: s.Merge, StoryPath: s.Story}
}

func (s *SaveCmd) Run(globals *CLI, ctx context.Context) error {
	wf, err := globals.workflow()
	if err != nil {
		return err
	}
	return wf.Save(ctx, s.options())
}

// UpdateCmd implements the 'update' subcommand.
type UpdateCmd struct {
	SaveCmd `embed:""`
	Close   bool `help:"Commit changes and merge them into the base branch."`
}

func (u *UpdateCmd) Run(globals *CLI, ctx context.Context) error {
	wf, err := globals.workflow()
	if err != nil {
		return err
	}
	return wf.Update(ctx, workflow.UpdateOptions{SaveOptions: u.options(), Close: u.Close})
}

// HelpCmd implements the 'help' subcommand.
type HelpCmd struct{}

// Run prints the top-level usage the same way --help does.
func (h *HelpCmd) Run(kctx *kong.Context) error {
	_, err := kctx.Kong.Parse([]string{"--help"})
	return err
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("mrkt"),
		kong.Description("A command-line tool to work with AI agents for git workflows."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(ctx, (*context.Context)(nil)))
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli); err != nil {
		console.New(false).Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
