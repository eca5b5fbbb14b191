package config

import (
	"fmt"
	"strings"
	"time"
)

// Formats and thresholds accepted by the output section.
var (
	Formats    = []string{"text", "json", "sarif", "html"}
	Thresholds = []string{"error", "warning", "none"}
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	if err := ValidateRulesConfig(&cfg.Rules); err != nil {
		return fmt.Errorf("YAML global config: rules directive is invalid: %w", err)
	}
	if err := ValidateAgentConfig(&cfg.Agent); err != nil {
		return fmt.Errorf("YAML global config: agent directive is invalid: %w", err)
	}
	if err := ValidateOutputConfig(&cfg.Output); err != nil {
		return fmt.Errorf("YAML global config: output directive is invalid: %w", err)
	}
	return nil
}

// ValidateScanConfig checks the scan section and normalizes extensions to ".ext".
func ValidateScanConfig(scan *Scan) error {
	if scan == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	if scan.Jobs < 0 {
		return fmt.Errorf("jobs must be a positive integer: %d", scan.Jobs)
	}
	if scan.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative: %d", scan.MaxFileSize)
	}
	for i, ext := range scan.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return fmt.Errorf("extensions cannot contain an empty entry")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		scan.Extensions[i] = ext
	}
	return nil
}

// ValidateRulesConfig checks the rules section.
func ValidateRulesConfig(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules configuration is nil")
	}
	if rules.NavLinkSpan < 0 {
		return fmt.Errorf("nav_link_span cannot be negative: %d", rules.NavLinkSpan)
	}
	if len(rules.Only) > 0 && len(rules.Disabled) > 0 {
		return fmt.Errorf("only and disabled cannot be used together")
	}
	return nil
}

// ValidateAgentConfig checks the agent section.
func ValidateAgentConfig(agent *Agent) error {
	if agent == nil {
		return fmt.Errorf("agent configuration is nil")
	}
	if err := validateDuration(agent.ProbeTimeout, "probe_timeout", 1*time.Minute); err != nil {
		return err
	}
	if err := validateDuration(agent.Timeout, "timeout", 1*time.Hour); err != nil {
		return err
	}
	return nil
}

// ValidateOutputConfig checks the output section.
func ValidateOutputConfig(output *Output) error {
	if output == nil {
		return fmt.Errorf("output configuration is nil")
	}
	if err := validateOneOf(output.Format, "format", Formats); err != nil {
		return err
	}
	return validateOneOf(output.FailOn, "fail_on", Thresholds)
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateOneOf accepts an empty value or one of allowed.
func validateOneOf(value, name string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}
