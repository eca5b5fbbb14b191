package fixer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrAgentUnavailable  = errors.New("fixing agent unavailable")
	ErrInvocationTimeout = errors.New("agent invocation timed out")
)

// waitDelay bounds how long Wait keeps copying output after the process is gone.
const waitDelay = 2 * time.Second

// Invocation describes a single agent process.
type Invocation struct {
	Command string
	Args    []string
	Env     []string // appended to the current environment
	Dir     string
	Timeout time.Duration
}

// Outcome is how an invocation ended.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Killed   bool  // the process was sent a kill signal by the runner
	Err      error // start failure, timeout or cancellation
}

// Success reports a zero exit status without runner errors.
func (o Outcome) Success() bool {
	return o.Err == nil && !o.TimedOut && o.ExitCode == 0
}

// Message explains a failed outcome, preferring what the agent printed.
func (o Outcome) Message() string {
	if o.TimedOut {
		return o.Err.Error()
	}
	if s := strings.TrimSpace(o.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(o.Stdout); s != "" {
		return s
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return fmt.Sprintf("exited with code %d", o.ExitCode)
}

// Runner runs one invocation to completion.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Outcome
}

// ExecRunner runs invocations as local subprocesses.
type ExecRunner struct {
	Logger hclog.Logger
}

// NewExecRunner creates a runner that logs through logger.
func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{Logger: logger}
}

// Run starts the process and waits for the first of: process exit, timeout,
// context cancellation. Timeout and cancellation kill the process.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) Outcome {
	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("starting agent", "command", inv.Command, "args_count", len(inv.Args), "timeout", inv.Timeout)
	if err := cmd.Start(); err != nil {
		return Outcome{ExitCode: -1, Err: fmt.Errorf("failed to start %q: %w", inv.Command, err)}
	}

	slot := newResultSlot()
	kill := func() bool {
		return cmd.Process.Kill() == nil
	}

	var timer *time.Timer
	if inv.Timeout > 0 {
		timer = time.AfterFunc(inv.Timeout, func() {
			slot.resolveWith(func() Outcome {
				return Outcome{
					ExitCode: -1,
					TimedOut: true,
					Killed:   kill(),
					Err:      fmt.Errorf("%w after %s", ErrInvocationTimeout, inv.Timeout),
				}
			})
		})
	}
	stopCancel := context.AfterFunc(ctx, func() {
		slot.resolveWith(func() Outcome {
			return Outcome{ExitCode: -1, Killed: kill(), Err: fmt.Errorf("agent invocation cancelled: %w", ctx.Err())}
		})
	})

	go func() {
		err := cmd.Wait()
		if timer != nil {
			timer.Stop()
		}
		stopCancel()

		out := Outcome{
			ExitCode: cmd.ProcessState.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			out.Err = err
		}
		if !slot.resolveWith(func() Outcome { return out }) {
			r.Logger.Debug("agent exited after the invocation was resolved", "command", inv.Command, "exit_code", out.ExitCode)
		}
	}()

	outcome := <-slot.ch
	r.Logger.Debug("agent finished", "command", inv.Command, "exit_code", outcome.ExitCode, "timed_out", outcome.TimedOut,
		"stdout", outcome.Stdout, "stderr", outcome.Stderr)
	return outcome
}

// resultSlot accepts exactly one outcome no matter how many completion paths race for it.
type resultSlot struct {
	mu       sync.Mutex
	resolved bool
	ch       chan Outcome
}

func newResultSlot() *resultSlot {
	return &resultSlot{ch: make(chan Outcome, 1)}
}

// resolveWith stores the outcome built by build unless the slot is already resolved.
// build runs under the lock so side effects like killing happen at most once.
func (s *resultSlot) resolveWith(build func() Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return false
	}
	s.resolved = true
	s.ch <- build()
	return true
}
