package fixer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/a11yscan/internal/issues"
)

// EventKind names a status transition of the fix run.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventSuccess  EventKind = "success"
	EventError    EventKind = "error"
	EventFallback EventKind = "fallback" // batch failed, retrying issue by issue
	EventPlanned  EventKind = "planned"  // dry run
)

// Event reports progress to the caller. Batch events carry every issue of the file.
type Event struct {
	RunID   string         `json:"run_id"`
	Kind    EventKind      `json:"kind"`
	File    string         `json:"file"`
	Issues  []issues.Issue `json:"issues"`
	Batch   bool           `json:"batch"`
	Message string         `json:"message,omitempty"`
}

// Summary is the aggregate result of a fix run.
type Summary struct {
	RunID      string `json:"run_id"`
	Fixed      int    `json:"fixed"`
	Failed     int    `json:"failed"`
	Planned    int    `json:"planned,omitempty"`
	Agent      string `json:"agent,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// OK reports whether the run finished without failures.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Diagnostic == ""
}

// Options controls a fix run.
type Options struct {
	Agent  AgentConfig
	Batch  bool // try one invocation per file before falling back to one per issue
	DryRun bool // report what would be fixed without running the agent
}

// Orchestrator drives the fixing agent over files with issues, one invocation at a time.
type Orchestrator struct {
	runner  Runner
	opts    Options
	logger  hclog.Logger
	onEvent func(Event)
}

// New creates an orchestrator. onEvent may be nil.
func New(runner Runner, opts Options, logger hclog.Logger, onEvent func(Event)) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	opts.Agent = opts.Agent.withDefaults()
	return &Orchestrator{runner: runner, opts: opts, logger: logger, onEvent: onEvent}
}

// run carries the state of a single Fix call.
type run struct {
	*Orchestrator
	id      string
	agent   string
	summary Summary
}

// Fix resolves the issues of every file. Files are processed in order and every
// issue ends up either fixed or failed. When the agent is unavailable nothing is
// attempted and the returned error wraps ErrAgentUnavailable.
func (o *Orchestrator) Fix(ctx context.Context, targets []issues.File) (Summary, error) {
	r := &run{Orchestrator: o, id: uuid.NewString()}
	r.summary.RunID = r.id
	logger := o.logger.With("run_id", r.id)

	if o.opts.DryRun {
		for _, f := range targets {
			for _, is := range f.Issues {
				r.emit(EventPlanned, f.Path, []issues.Issue{is}, false, "would be fixed")
				r.summary.Planned++
			}
		}
		logger.Info("dry run finished", "planned", r.summary.Planned)
		return r.summary, nil
	}

	agent, version, err := o.checkAvailability(ctx)
	if err != nil {
		logger.Error("fixing agent is not available", "error", err)
		r.summary.Diagnostic = err.Error()
		return r.summary, err
	}
	r.agent = agent
	r.summary.Agent = agent
	logger.Info("fix run starting", "agent", agent, "version", version, "files", len(targets), "batch", o.opts.Batch)

	for _, f := range targets {
		r.fixFile(ctx, f)
	}

	logger.Info("fix run finished", "fixed", r.summary.Fixed, "failed", r.summary.Failed)
	return r.summary, nil
}

func (o *Orchestrator) checkAvailability(ctx context.Context) (string, string, error) {
	path, err := Resolve(o.opts.Agent.Command, o.opts.Agent.SearchPaths)
	if err != nil {
		return "", "", err
	}
	version, err := Probe(ctx, o.runner, path, o.opts.Agent.VersionArgs, o.opts.Agent.ProbeTimeout)
	if err != nil {
		return "", "", err
	}
	return path, version, nil
}

func (r *run) fixFile(ctx context.Context, f issues.File) {
	if len(f.Issues) == 0 {
		return
	}
	if r.opts.Batch && len(f.Issues) > 1 {
		if ctx.Err() == nil {
			r.emit(EventStart, f.Path, f.Issues, true, "")
			out := r.invoke(ctx, f.Path, BatchInstruction(f.Path, f.Issues))
			if out.Success() {
				r.summary.Fixed += len(f.Issues)
				r.emit(EventSuccess, f.Path, f.Issues, true, "")
				return
			}
			r.logger.Warn("batch fix failed, falling back to single fixes", "run_id", r.id, "file", f.Path, "error", out.Message())
			r.emit(EventFallback, f.Path, f.Issues, true, out.Message())
		}
	}
	for _, is := range f.Issues {
		r.fixIssue(ctx, f.Path, is)
	}
}

func (r *run) fixIssue(ctx context.Context, path string, is issues.Issue) {
	single := []issues.Issue{is}
	if err := ctx.Err(); err != nil {
		r.summary.Failed++
		r.emit(EventError, path, single, false, cancelledMessage(err))
		return
	}

	r.emit(EventStart, path, single, false, "")
	out := r.invoke(ctx, path, SingleInstruction(path, is))
	if out.Success() {
		r.summary.Fixed++
		r.emit(EventSuccess, path, single, false, "")
		return
	}
	r.summary.Failed++
	r.emit(EventError, path, single, false, out.Message())
}

func (r *run) invoke(ctx context.Context, path, instruction string) Outcome {
	return r.runner.Run(ctx, Invocation{
		Command: r.agent,
		Args:    Arguments(r.opts.Agent.Args, instruction, path),
		Dir:     r.opts.Agent.WorkDir,
		Timeout: r.opts.Agent.Timeout,
	})
}

func (r *run) emit(kind EventKind, path string, list []issues.Issue, batch bool, message string) {
	r.onEvent(Event{RunID: r.id, Kind: kind, File: path, Issues: list, Batch: batch, Message: message})
}

func cancelledMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "fix run deadline exceeded"
	}
	return fmt.Sprintf("fix run cancelled: %v", err)
}
