package config

import (
	"reflect"
	"time"
)

const (
	DefaultJobs        = 4
	DefaultMaxFileSize = 2 << 20
	DefaultFormat      = "text"
	DefaultFailOn      = "error"
)

// SetThen returns value unless it is the zero value, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(&value).Elem().IsZero() {
		return defaultValue
	}
	return value
}

// BoolOr dereferences an optional boolean.
func BoolOr(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

// GetJobs returns the number of files scanned at once.
func GetJobs(cfg *Config) int {
	if cfg == nil {
		return DefaultJobs
	}
	return SetThen(cfg.Scan.Jobs, DefaultJobs)
}

// GetMaxFileSize returns the size limit for scanned files in bytes.
func GetMaxFileSize(cfg *Config) int64 {
	if cfg == nil {
		return DefaultMaxFileSize
	}
	return SetThen(cfg.Scan.MaxFileSize, int64(DefaultMaxFileSize))
}

// GetRespectGitignore reports whether discovery skips files ignored by .gitignore.
func GetRespectGitignore(cfg *Config) bool {
	if cfg == nil {
		return true
	}
	return BoolOr(cfg.Scan.RespectGitignore, true)
}

// GetFormat returns the report format.
func GetFormat(cfg *Config) string {
	if cfg == nil {
		return DefaultFormat
	}
	return SetThen(cfg.Output.Format, DefaultFormat)
}

// GetFailOn returns the lowest severity that fails a scan.
func GetFailOn(cfg *Config) string {
	if cfg == nil {
		return DefaultFailOn
	}
	return SetThen(cfg.Output.FailOn, DefaultFailOn)
}

// GetAgentTimeout returns the per invocation timeout, zero meaning the agent default.
func GetAgentTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return 0
	}
	return cfg.Agent.Timeout
}

// GetBatch reports whether fixes are batched per file.
func GetBatch(cfg *Config) bool {
	if cfg == nil {
		return true
	}
	return BoolOr(cfg.Agent.Batch, true)
}
