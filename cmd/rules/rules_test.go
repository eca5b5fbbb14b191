package rules

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/report"
	"github.com/scan-io-git/a11yscan/pkg/shared/errors"
)

func runRules(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	rulesOptions = RunOptionsRules{}
	Init(cfg)

	var out bytes.Buffer
	RulesCmd.SetOut(&out)
	RulesCmd.SetArgs(args)
	err := RulesCmd.Execute()
	return out.String(), err
}

func TestRulesCommandHonoursConfig(t *testing.T) {
	cfg := &config.Config{Rules: config.Rules{Only: []string{"img-alt", "duplicate-id"}}}

	out, err := runRules(t, cfg, "--json")
	require.NoError(t, err)

	var listed []report.RuleJSON
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "img-alt", listed[0].ID)
	assert.Equal(t, "element", listed[0].Kind)
	assert.Equal(t, "duplicate-id", listed[1].ID)
	assert.Equal(t, "file", listed[1].Kind)
}

func TestRulesCommandAll(t *testing.T) {
	cfg := &config.Config{Rules: config.Rules{Only: []string{"img-alt"}}}

	out, err := runRules(t, cfg, "--all")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Len(t, lines, 24)
}

func TestRulesCommandUnknownRule(t *testing.T) {
	cfg := &config.Config{Rules: config.Rules{Disabled: []string{"no-such-rule"}}}

	_, err := runRules(t, cfg)
	assert.Equal(t, errors.ExitUsage, errors.ExitCode(err))
}
