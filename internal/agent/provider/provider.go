// Package provider wraps the external AI services that turn natural
// language commands into structured parse results.
package provider

import (
	"context"
	"time"

	"ai-command-agent/internal/common/retry"
	"ai-command-agent/internal/models"
)

// Provider is one external AI service. Parse returns a validated
// ParsedResult or an error; implementations never panic on provider
// misbehavior. HealthCheck is a cheap reachability probe, independent of
// the parsing path.
type Provider interface {
	Name() string
	Parse(ctx context.Context, command string, context map[string]interface{}) (*models.ParsedResult, error)
	HealthCheck(ctx context.Context) error
}

// Options bound the remote calls made by every provider implementation.
type Options struct {
	Timeout       time.Duration // per parse attempt
	HealthTimeout time.Duration // reachability probe
	Retry         retry.Policy
}

// DefaultOptions matches the documented policy: 30s call timeout, 5s
// health probe, 3 attempts with 4s..10s exponential backoff.
func DefaultOptions() Options {
	return Options{
		Timeout:       30 * time.Second,
		HealthTimeout: 5 * time.Second,
		Retry:         retry.DefaultPolicy(),
	}
}
