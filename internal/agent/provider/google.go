package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/retry"
	"ai-command-agent/internal/models"
)

const defaultGoogleEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-latest:generateContent"

// Google calls the Gemini generateContent API.
type Google struct {
	apiKey       string
	endpoint     string
	healthURL    string
	client       *http.Client
	healthClient *http.Client
	opts         Options
	logger       logger.Logger
}

type googleRequest struct {
	Contents         []googleContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

// NewGoogle creates the Gemini provider. endpoint may be empty to use the
// public API; tests point it at a local server.
func NewGoogle(apiKey, endpoint string, opts Options, log logger.Logger) *Google {
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}

	return &Google{
		apiKey:       apiKey,
		endpoint:     endpoint,
		healthURL:    baseURL(endpoint),
		client:       &http.Client{Timeout: opts.Timeout},
		healthClient: &http.Client{Timeout: opts.HealthTimeout},
		opts:         opts,
		logger:       log.WithFields(map[string]interface{}{"provider": "google"}),
	}
}

func (g *Google) Name() string { return "google" }

// Parse sends the engineered prompt to Gemini and decodes the embedded JSON
// result. Transport errors, non-2xx statuses, empty candidate lists, and
// schema violations all consume the same retry budget.
func (g *Google) Parse(ctx context.Context, command string, reqContext map[string]interface{}) (*models.ParsedResult, error) {
	payload := googleRequest{
		Contents: []googleContent{
			{Parts: []googlePart{{Text: BuildPrompt(command, reqContext)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewProviderCallFailedError(g.Name(), err)
	}

	var parsed *models.ParsedResult
	err = retry.Do(ctx, g.opts.Retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost,
			fmt.Sprintf("%s?key=%s", g.endpoint, g.apiKey), bytes.NewReader(body))
		if err != nil {
			return apperrors.NewProviderCallFailedError(g.Name(), err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			if attemptCtx.Err() == context.DeadlineExceeded {
				return apperrors.NewProviderTimeoutError(g.Name())
			}
			return apperrors.NewProviderCallFailedError(g.Name(), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return apperrors.NewProviderCallFailedError(g.Name(), fmt.Errorf("status %d", resp.StatusCode))
		}

		var decoded googleResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return apperrors.NewProviderResponseInvalidError(g.Name(), fmt.Sprintf("decode error: %v", err))
		}
		if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
			return apperrors.NewProviderResponseInvalidError(g.Name(), "no candidates in response")
		}

		result, err := DecodeResult(decoded.Candidates[0].Content.Parts[0].Text)
		if err != nil {
			return apperrors.NewProviderResponseInvalidError(g.Name(), err.Error())
		}

		parsed = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// HealthCheck probes the API host root. Transport failures surface as a
// typed call error so callers can tell unreachable from unhealthy.
func (g *Google) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.healthURL, nil)
	if err != nil {
		return apperrors.NewProviderCallFailedError(g.Name(), err)
	}

	resp, err := g.healthClient.Do(req)
	if err != nil {
		return apperrors.NewProviderCallFailedError(g.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// baseURL reduces an endpoint to scheme://host for health probing.
func baseURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return endpoint
	}
	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
