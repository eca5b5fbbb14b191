package fixer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode))
	return path
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	installed := writeExecutable(t, dir, "fake-agent", 0o755)
	plain := writeExecutable(t, dir, "not-executable", 0o644)

	t.Run("explicit path", func(t *testing.T) {
		got, err := Resolve(installed, nil)
		require.NoError(t, err)
		assert.Equal(t, installed, got)
	})

	t.Run("explicit path must be executable", func(t *testing.T) {
		_, err := Resolve(plain, nil)
		assert.ErrorIs(t, err, ErrAgentUnavailable)
	})

	t.Run("search paths before PATH", func(t *testing.T) {
		t.Setenv("PATH", "")
		got, err := Resolve("fake-agent", []string{filepath.Join(dir, "other"), installed})
		require.NoError(t, err)
		assert.Equal(t, installed, got)
	})

	t.Run("search paths with another name are ignored", func(t *testing.T) {
		t.Setenv("PATH", "")
		_, err := Resolve("different-agent", []string{installed})
		assert.ErrorIs(t, err, ErrAgentUnavailable)
	})

	t.Run("PATH lookup", func(t *testing.T) {
		t.Setenv("PATH", dir)
		got, err := Resolve("fake-agent", nil)
		require.NoError(t, err)
		assert.Equal(t, installed, got)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		_, err := Resolve("fake-agent", nil)
		assert.ErrorIs(t, err, ErrAgentUnavailable)
	})
}

func TestProbe(t *testing.T) {
	runner := NewExecRunner(nil)
	inv := helperInvocation("version", 0)

	t.Setenv("A11YSCAN_WANT_HELPER_PROCESS", "1")
	version, err := Probe(context.Background(), runner, inv.Command, inv.Args, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3 (fake agent)", version)

	fail := helperInvocation("fail-stderr", 0)
	_, err = Probe(context.Background(), runner, fail.Command, fail.Args, 30*time.Second)
	assert.ErrorIs(t, err, ErrAgentUnavailable)
	assert.Contains(t, err.Error(), "cannot edit file")
}

func TestAgentConfigDefaults(t *testing.T) {
	cfg := AgentConfig{}.withDefaults()

	assert.Equal(t, DefaultCommand, cfg.Command)
	assert.Equal(t, DefaultSearchPaths(), cfg.SearchPaths)
	assert.Equal(t, DefaultArgs(), cfg.Args)
	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	custom := AgentConfig{Command: "aider"}.withDefaults()
	assert.Nil(t, custom.SearchPaths)
}
