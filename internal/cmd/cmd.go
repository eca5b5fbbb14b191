package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/rules"
)

// Mode constants
const (
	ModeAll     = "all"
	ModeChanged = "changed"
)

// DetermineMode selects between scanning every discovered file and only the changed ones.
func DetermineMode(changed bool, base string) string {
	if changed || base != "" {
		return ModeChanged
	}
	return ModeAll
}

// BuildRegistry returns the rules to evaluate. A rule list given on the command line
// replaces the rules section of the configuration.
func BuildRegistry(cfg *config.Config, ruleList string) (*rules.Registry, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	reg := rules.Default(rules.Options{NavLinkSpan: cfg.Rules.NavLinkSpan})

	if ids := rules.ParseList(ruleList); len(ids) > 0 {
		return reg.Select(ids)
	}
	if ruleList != "" {
		return nil, rules.ErrNoRulesSelected
	}
	if len(cfg.Rules.Only) > 0 {
		return reg.Select(cfg.Rules.Only)
	}
	if len(cfg.Rules.Disabled) > 0 {
		return reg.Without(cfg.Rules.Disabled)
	}
	return reg, nil
}

// ParseThreshold converts a --fail-on value. "none" disables failing on findings.
func ParseThreshold(name string) (issues.Severity, bool, error) {
	if name == "none" {
		return "", false, nil
	}
	severity, err := issues.ParseSeverity(name)
	if err != nil {
		return "", false, fmt.Errorf("invalid fail-on value: %w", err)
	}
	return severity, true, nil
}

// NormalizeFlagName lets flags be spelled like their configuration keys, so --fail_on means --fail-on.
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
