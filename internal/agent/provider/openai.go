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
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// OpenAI calls the chat completions API.
type OpenAI struct {
	apiKey       string
	endpoint     string
	model        string
	healthURL    string
	client       *http.Client
	healthClient *http.Client
	opts         Options
	logger       logger.Logger
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(apiKey, endpoint, model string, opts Options, log logger.Logger) *OpenAI {
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAI{
		apiKey:       apiKey,
		endpoint:     endpoint,
		model:        model,
		healthURL:    baseURL(endpoint),
		client:       &http.Client{Timeout: opts.Timeout},
		healthClient: &http.Client{Timeout: opts.HealthTimeout},
		opts:         opts,
		logger:       log.WithFields(map[string]interface{}{"provider": "openai"}),
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Parse(ctx context.Context, command string, reqContext map[string]interface{}) (*models.ParsedResult, error) {
	payload := openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "user", Content: BuildPrompt(command, reqContext)},
		},
		Temperature: 0.1,
		MaxTokens:   1024,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewProviderCallFailedError(o.Name(), err)
	}

	var parsed *models.ParsedResult
	err = retry.Do(ctx, o.opts.Retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, o.endpoint, bytes.NewReader(body))
		if err != nil {
			return apperrors.NewProviderCallFailedError(o.Name(), err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)

		resp, err := o.client.Do(req)
		if err != nil {
			if attemptCtx.Err() == context.DeadlineExceeded {
				return apperrors.NewProviderTimeoutError(o.Name())
			}
			return apperrors.NewProviderCallFailedError(o.Name(), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return apperrors.NewProviderCallFailedError(o.Name(), fmt.Errorf("status %d", resp.StatusCode))
		}

		var decoded openAIResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return apperrors.NewProviderResponseInvalidError(o.Name(), fmt.Sprintf("decode error: %v", err))
		}
		if len(decoded.Choices) == 0 {
			return apperrors.NewProviderResponseInvalidError(o.Name(), "no choices in response")
		}

		result, err := DecodeResult(decoded.Choices[0].Message.Content)
		if err != nil {
			return apperrors.NewProviderResponseInvalidError(o.Name(), err.Error())
		}

		parsed = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (o *OpenAI) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.healthURL, nil)
	if err != nil {
		return apperrors.NewProviderCallFailedError(o.Name(), err)
	}

	resp, err := o.healthClient.Do(req)
	if err != nil {
		return apperrors.NewProviderCallFailedError(o.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
