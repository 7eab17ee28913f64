package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/retry"
	"ai-command-agent/internal/models"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel    = "claude-3-5-haiku-latest"
	anthropicVersion         = "2023-06-01"
)

// Anthropic calls the messages API.
type Anthropic struct {
	apiKey       string
	endpoint     string
	model        string
	healthURL    string
	client       *http.Client
	healthClient *http.Client
	opts         Options
	logger       logger.Logger
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func NewAnthropic(apiKey, endpoint, model string, opts Options, log logger.Logger) *Anthropic {
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	return &Anthropic{
		apiKey:       apiKey,
		endpoint:     endpoint,
		model:        model,
		healthURL:    baseURL(endpoint),
		client:       &http.Client{Timeout: opts.Timeout},
		healthClient: &http.Client{Timeout: opts.HealthTimeout},
		opts:         opts,
		logger:       log.WithFields(map[string]interface{}{"provider": "anthropic"}),
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Parse(ctx context.Context, command string, reqContext map[string]interface{}) (*models.ParsedResult, error) {
	payload := anthropicRequest{
		Model:     a.model,
		MaxTokens: 1024,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(command, reqContext)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewProviderCallFailedError(a.Name(), err)
	}

	var parsed *models.ParsedResult
	err = retry.Do(ctx, a.opts.Retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, a.endpoint, bytes.NewReader(body))
		if err != nil {
			return apperrors.NewProviderCallFailedError(a.Name(), err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", a.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := a.client.Do(req)
		if err != nil {
			if attemptCtx.Err() == context.DeadlineExceeded {
				return apperrors.NewProviderTimeoutError(a.Name())
			}
			return apperrors.NewProviderCallFailedError(a.Name(), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return apperrors.NewProviderCallFailedError(a.Name(), fmt.Errorf("status %d", resp.StatusCode))
		}

		var decoded anthropicResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return apperrors.NewProviderResponseInvalidError(a.Name(), fmt.Sprintf("decode error: %v", err))
		}
		if len(decoded.Content) == 0 {
			return apperrors.NewProviderResponseInvalidError(a.Name(), "empty content in response")
		}

		result, err := DecodeResult(decoded.Content[0].Text)
		if err != nil {
			return apperrors.NewProviderResponseInvalidError(a.Name(), err.Error())
		}

		parsed = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (a *Anthropic) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.healthURL, nil)
	if err != nil {
		return apperrors.NewProviderCallFailedError(a.Name(), err)
	}

	resp, err := a.healthClient.Do(req)
	if err != nil {
		return apperrors.NewProviderCallFailedError(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
