package fixer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/scan-io-git/a11yscan/pkg/shared/files"
)

const (
	DefaultCommand      = "claude"
	DefaultProbeTimeout = 10 * time.Second
	DefaultTimeout      = 3 * time.Minute
)

// Placeholders expanded in agent argument templates.
const (
	PlaceholderInstruction = "{instruction}"
	PlaceholderFile        = "{file}"
)

// DefaultSearchPaths are the install locations checked before PATH.
func DefaultSearchPaths() []string {
	return []string{
		"~/.claude/local/claude",
		"~/.local/bin/claude",
		"~/.npm-global/bin/claude",
		"/usr/local/bin/claude",
		"/opt/homebrew/bin/claude",
	}
}

// DefaultArgs runs the agent non-interactively with permission to edit files.
func DefaultArgs() []string {
	return []string{"-p", PlaceholderInstruction, "--permission-mode", "acceptEdits"}
}

// DefaultVersionArgs is the version probe.
func DefaultVersionArgs() []string {
	return []string{"--version"}
}

// AgentConfig describes how to find and call the fixing agent.
type AgentConfig struct {
	Command      string        // name or path of the executable
	SearchPaths  []string      // well-known install locations, tilde allowed
	Args         []string      // argument templates with placeholders
	VersionArgs  []string      // arguments of the availability probe
	ProbeTimeout time.Duration // bound for the availability probe
	Timeout      time.Duration // bound for every fix invocation
	WorkDir      string        // working directory of the agent
}

// withDefaults fills unset fields.
func (c AgentConfig) withDefaults() AgentConfig {
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.SearchPaths == nil && c.Command == DefaultCommand {
		c.SearchPaths = DefaultSearchPaths()
	}
	if len(c.Args) == 0 {
		c.Args = DefaultArgs()
	}
	if len(c.VersionArgs) == 0 {
		c.VersionArgs = DefaultVersionArgs()
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Resolve locates the agent executable. A command containing a path separator is
// used as is; otherwise search paths with a matching base name are tried before PATH.
func Resolve(command string, searchPaths []string) (string, error) {
	if strings.ContainsRune(command, filepath.Separator) || strings.HasPrefix(command, "~/") {
		path, err := files.ExpandPath(command)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
		}
		if !isExecutable(path) {
			return "", fmt.Errorf("%w: %q is not an executable file", ErrAgentUnavailable, path)
		}
		return path, nil
	}

	for _, candidate := range searchPaths {
		if filepath.Base(candidate) != command {
			continue
		}
		path, err := files.ExpandPath(candidate)
		if err != nil {
			continue
		}
		if isExecutable(path) {
			return path, nil
		}
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("%w: %q not found in install locations or PATH", ErrAgentUnavailable, command)
	}
	return path, nil
}

// Probe checks that the agent answers the version command within the probe timeout.
// It returns the trimmed version output.
func Probe(ctx context.Context, runner Runner, path string, versionArgs []string, timeout time.Duration) (string, error) {
	out := runner.Run(ctx, Invocation{Command: path, Args: versionArgs, Timeout: timeout})
	if !out.Success() {
		return "", fmt.Errorf("%w: version probe failed: %s", ErrAgentUnavailable, out.Message())
	}
	return strings.TrimSpace(out.Stdout), nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
