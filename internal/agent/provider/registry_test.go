package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/models"
)

// stubProvider counts parse attempts and returns a canned outcome.
type stubProvider struct {
	name   string
	result *models.ParsedResult
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Parse(ctx context.Context, command string, reqContext map[string]interface{}) (*models.ParsedResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) error { return nil }

func validResult(intent string) *models.ParsedResult {
	return &models.ParsedResult{
		Intent:      intent,
		CommandType: "system_configuration",
		Parameters:  map[string]interface{}{},
		Confidence:  0.9,
		Valid:       true,
	}
}

func invalidResult(reason string) *models.ParsedResult {
	return &models.ParsedResult{
		Intent:      "unknown",
		CommandType: "unknown",
		Parameters:  map[string]interface{}{},
		Valid:       false,
		Error:       &reason,
	}
}

func TestRegistry_FirstSuccessWins(t *testing.T) {
	first := &stubProvider{name: "google", result: validResult("enable_starvation_mode")}
	second := &stubProvider{name: "openai", result: validResult("should_not_be_used")}

	reg := NewRegistry("google", logger.NewTestLogger(t))
	reg.Register(first)
	reg.Register(second)

	result, name, err := reg.Parse(context.Background(), "Enable starvation mode", nil)
	require.NoError(t, err)

	assert.Equal(t, "google", name)
	assert.Equal(t, "enable_starvation_mode", result.Intent)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "no further providers tried after a success")
}

func TestRegistry_FallsBackOnInvalidResult(t *testing.T) {
	first := &stubProvider{name: "google", result: invalidResult("could not parse")}
	second := &stubProvider{name: "openai", result: validResult("pause_queue")}

	reg := NewRegistry("google", logger.NewTestLogger(t))
	reg.Register(first)
	reg.Register(second)

	result, name, err := reg.Parse(context.Background(), "Pause queue processing", nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", name)
	assert.Equal(t, "pause_queue", result.Intent)
	assert.Equal(t, 1, first.calls, "failing provider attempted exactly once")
}

func TestRegistry_FallsBackOnError(t *testing.T) {
	first := &stubProvider{name: "google", err: errors.New("connection refused")}
	second := &stubProvider{name: "openai", result: validResult("resume_queue")}

	reg := NewRegistry("google", logger.NewTestLogger(t))
	reg.Register(first)
	reg.Register(second)

	_, name, err := reg.Parse(context.Background(), "Resume queue processing", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
}

func TestRegistry_DefaultProviderTriedFirst(t *testing.T) {
	google := &stubProvider{name: "google", result: validResult("from_google")}
	openai := &stubProvider{name: "openai", result: validResult("from_openai")}

	reg := NewRegistry("openai", logger.NewTestLogger(t))
	reg.Register(google)
	reg.Register(openai)

	assert.Equal(t, []string{"openai", "google"}, reg.Names())

	_, name, err := reg.Parse(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
	assert.Equal(t, 0, google.calls)
}

func TestRegistry_AllProvidersFailed(t *testing.T) {
	first := &stubProvider{name: "google", err: errors.New("quota exceeded")}
	second := &stubProvider{name: "openai", result: invalidResult("gibberish input")}

	reg := NewRegistry("google", logger.NewTestLogger(t))
	reg.Register(first)
	reg.Register(second)

	_, _, err := reg.Parse(context.Background(), "asdf qwerty", nil)
	require.Error(t, err)

	assert.Equal(t, apperrors.ErrCodeAllProvidersFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "All AI providers failed")

	se := err.(*apperrors.StandardError)
	assert.Contains(t, se.Details, "gibberish input", "aggregate carries the most recent error")
}

func TestRegistry_NoProvidersConfigured(t *testing.T) {
	reg := NewRegistry("google", logger.NewTestLogger(t))

	_, _, err := reg.Parse(context.Background(), "Enable starvation mode", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoProvidersConfigured, apperrors.CodeOf(err))
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_RegisterIgnoresDuplicates(t *testing.T) {
	reg := NewRegistry("google", logger.NewTestLogger(t))
	reg.Register(&stubProvider{name: "google", result: validResult("x")})
	reg.Register(&stubProvider{name: "google", result: validResult("y")})

	assert.Equal(t, 1, reg.Count())
}
