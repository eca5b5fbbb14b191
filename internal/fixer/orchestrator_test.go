package fixer

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/a11yscan/internal/issues"
)

// fakeRunner records invocations and answers them with respond.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []Invocation
	respond func(inv Invocation) Outcome
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation) Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()
	if len(inv.Args) == 1 && inv.Args[0] == "--version" {
		return Outcome{Stdout: "1.0.0"}
	}
	if f.respond == nil {
		return Outcome{}
	}
	return f.respond(inv)
}

// fixCalls returns the instructions of every non-probe invocation.
func (f *fakeRunner) fixCalls() []string {
	var out []string
	for _, inv := range f.calls {
		if len(inv.Args) == 1 && inv.Args[0] == "--version" {
			continue
		}
		out = append(out, inv.Args[len(inv.Args)-1])
	}
	return out
}

func isBatch(instruction string) bool {
	return strings.Contains(instruction, "accessibility issues in")
}

func testOptions(batch bool) Options {
	return Options{
		Agent: AgentConfig{
			Command:     os.Args[0],
			Args:        []string{PlaceholderInstruction},
			VersionArgs: []string{"--version"},
		},
		Batch: batch,
	}
}

func threeIssues() []issues.Issue {
	return []issues.Issue{
		{RuleID: "img-alt", Line: 3, RepairInstruction: "Line 3: first"},
		{RuleID: "button-name", Line: 5, RepairInstruction: "Line 5: second"},
		{RuleID: "link-name", Line: 8, RepairInstruction: "Line 8: third"},
	}
}

type recorder struct {
	events []Event
}

func (r *recorder) record(e Event) { r.events = append(r.events, e) }

func (r *recorder) kinds() []EventKind {
	var out []EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func TestFixBatchSuccess(t *testing.T) {
	runner := &fakeRunner{}
	rec := &recorder{}

	summary, err := New(runner, testOptions(true), nil, rec.record).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Fixed)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.OK())

	calls := runner.fixCalls()
	require.Len(t, calls, 1)
	assert.True(t, isBatch(calls[0]))
	assert.Equal(t, []EventKind{EventStart, EventSuccess}, rec.kinds())
	assert.Len(t, rec.events[1].Issues, 3)
}

func TestFixBatchFailureFallsBackToEveryIssue(t *testing.T) {
	runner := &fakeRunner{respond: func(inv Invocation) Outcome {
		instruction := inv.Args[0]
		switch {
		case isBatch(instruction):
			return Outcome{ExitCode: 1, Stderr: "batch too large"}
		case strings.Contains(instruction, "second"):
			return Outcome{ExitCode: 2, Stderr: "could not edit"}
		}
		return Outcome{}
	}}
	rec := &recorder{}

	summary, err := New(runner, testOptions(true), nil, rec.record).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()},
	})

	require.NoError(t, err)
	calls := runner.fixCalls()
	require.Len(t, calls, 4)
	assert.True(t, isBatch(calls[0]))
	for _, c := range calls[1:] {
		assert.False(t, isBatch(c))
	}

	assert.Equal(t, 2, summary.Fixed)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.OK())
	assert.Equal(t, []EventKind{
		EventStart, EventFallback,
		EventStart, EventSuccess,
		EventStart, EventError,
		EventStart, EventSuccess,
	}, rec.kinds())
	assert.Equal(t, "batch too large", rec.events[1].Message)
	assert.Equal(t, "could not edit", rec.events[5].Message)
}

func TestFixSingleIssueSkipsBatch(t *testing.T) {
	runner := &fakeRunner{}

	summary, err := New(runner, testOptions(true), nil, nil).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()[:1]},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fixed)
	calls := runner.fixCalls()
	require.Len(t, calls, 1)
	assert.False(t, isBatch(calls[0]))
}

func TestFixWithoutBatching(t *testing.T) {
	runner := &fakeRunner{}

	summary, err := New(runner, testOptions(false), nil, nil).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()},
		{Path: "b.html", Issues: threeIssues()[:2]},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, summary.Fixed)
	calls := runner.fixCalls()
	require.Len(t, calls, 5)
	for _, c := range calls {
		assert.False(t, isBatch(c))
	}
}

func TestFixDryRunSpawnsNothing(t *testing.T) {
	runner := &fakeRunner{}
	rec := &recorder{}
	opts := testOptions(true)
	opts.DryRun = true
	opts.Agent.Command = "/nonexistent/agent"

	summary, err := New(runner, opts, nil, rec.record).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()},
	})

	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Equal(t, 3, summary.Planned)
	assert.Equal(t, 0, summary.Fixed)
	assert.Equal(t, []EventKind{EventPlanned, EventPlanned, EventPlanned}, rec.kinds())
}

func TestFixAgentUnavailable(t *testing.T) {
	t.Run("not installed", func(t *testing.T) {
		runner := &fakeRunner{}
		opts := testOptions(true)
		opts.Agent.Command = "/nonexistent/agent"

		summary, err := New(runner, opts, nil, nil).Fix(context.Background(), []issues.File{
			{Path: "a.html", Issues: threeIssues()},
		})

		assert.ErrorIs(t, err, ErrAgentUnavailable)
		assert.Empty(t, runner.calls)
		assert.Equal(t, 0, summary.Fixed)
		assert.Equal(t, 0, summary.Failed)
		assert.NotEmpty(t, summary.Diagnostic)
	})

	t.Run("probe fails", func(t *testing.T) {
		runner := &fakeRunner{}
		opts := testOptions(true)
		opts.Agent.VersionArgs = []string{"--broken"}
		runner.respond = func(inv Invocation) Outcome {
			if inv.Args[0] == "--broken" {
				return Outcome{ExitCode: 1, Stderr: "unknown flag"}
			}
			return Outcome{}
		}

		summary, err := New(runner, opts, nil, nil).Fix(context.Background(), []issues.File{
			{Path: "a.html", Issues: threeIssues()},
		})

		assert.ErrorIs(t, err, ErrAgentUnavailable)
		assert.Len(t, runner.calls, 1)
		assert.Equal(t, 0, summary.Fixed+summary.Failed)
		assert.Contains(t, summary.Diagnostic, "unknown flag")
	})
}

func TestFixCancelledRunFailsRemainingIssues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{respond: func(Invocation) Outcome {
		cancel()
		return Outcome{}
	}}

	summary, err := New(runner, testOptions(false), nil, nil).Fix(ctx, []issues.File{
		{Path: "a.html", Issues: threeIssues()},
		{Path: "b.html", Issues: threeIssues()},
	})

	require.NoError(t, err)
	assert.Len(t, runner.fixCalls(), 1)
	assert.Equal(t, 1, summary.Fixed)
	assert.Equal(t, 5, summary.Failed)
}

func TestFixEventsCarryRunID(t *testing.T) {
	rec := &recorder{}

	summary, err := New(&fakeRunner{}, testOptions(true), nil, rec.record).Fix(context.Background(), []issues.File{
		{Path: "a.html", Issues: threeIssues()},
	})

	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	for _, e := range rec.events {
		assert.Equal(t, summary.RunID, e.RunID)
		assert.Equal(t, "a.html", e.File)
	}
}
