package provider

import (
	"context"

	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/metrics"
	"ai-command-agent/internal/models"
)

// Registry holds the configured providers and decides try-order: the
// default provider first, then the rest in registration order. It is built
// once at startup and read-only afterwards.
type Registry struct {
	defaultName string
	order       []string
	providers   map[string]Provider
	logger      logger.Logger
}

func NewRegistry(defaultName string, log logger.Logger) *Registry {
	return &Registry{
		defaultName: defaultName,
		providers:   make(map[string]Provider),
		logger:      log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

// Register adds a provider. Registration order is the fallback order for
// non-default providers.
func (r *Registry) Register(p Provider) {
	if _, exists := r.providers[p.Name()]; exists {
		return
	}
	r.providers[p.Name()] = p
	r.order = append(r.order, p.Name())
}

// Count returns the number of configured providers.
func (r *Registry) Count() int {
	return len(r.providers)
}

// Names returns the provider names in try-order.
func (r *Registry) Names() []string {
	return r.tryOrder()
}

// Providers returns the registered providers keyed by name, for health checks.
func (r *Registry) Providers() map[string]Provider {
	return r.providers
}

func (r *Registry) tryOrder() []string {
	names := make([]string, 0, len(r.order))
	if _, ok := r.providers[r.defaultName]; ok {
		names = append(names, r.defaultName)
	}
	for _, name := range r.order {
		if name != r.defaultName {
			names = append(names, name)
		}
	}
	return names
}

// Parse tries each provider in fallback order until one returns a result
// with valid=true. A provider error or an explicitly invalid result records
// the failure and moves to the next provider; first success wins. When
// every provider fails (or none are configured), the aggregate error
// carries the most recent failure message.
func (r *Registry) Parse(ctx context.Context, command string, reqContext map[string]interface{}) (*models.ParsedResult, string, error) {
	if len(r.providers) == 0 {
		return nil, "", apperrors.NewNoProvidersConfiguredError()
	}

	var lastErr error
	for _, name := range r.tryOrder() {
		p := r.providers[name]

		result, err := p.Parse(ctx, command, reqContext)
		if err != nil {
			lastErr = err
			metrics.ProviderErrors.WithLabelValues(name, string(apperrors.CodeOf(err))).Inc()
			r.logger.Error("provider failed", map[string]interface{}{
				"provider": name,
				"error":    err.Error(),
			})
			continue
		}

		if !result.Valid {
			detail := result.ErrorMessage()
			if detail == "" {
				detail = "invalid command parsing result"
			}
			lastErr = apperrors.NewProviderResponseInvalidError(name, detail)
			metrics.ProviderErrors.WithLabelValues(name, string(apperrors.ErrCodeProviderResponseInvalid)).Inc()
			r.logger.Warn("provider returned invalid result", map[string]interface{}{
				"provider": name,
				"error":    detail,
			})
			continue
		}

		return result, name, nil
	}

	lastMsg := "no providers configured"
	if lastErr != nil {
		lastMsg = lastErr.Error()
	}
	return nil, "", apperrors.NewAllProvidersFailedError(lastMsg)
}
