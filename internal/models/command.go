// internal/models/command.go
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CommandType categorizes a parsed command.
type CommandType string

const (
	CommandTypeQueueModification   CommandType = "queue_modification"
	CommandTypeSystemConfiguration CommandType = "system_configuration"
	CommandTypeStatusQuery         CommandType = "status_query"
	CommandTypeAnalytics           CommandType = "analytics"
	CommandTypeAdvanced            CommandType = "advanced"
	CommandTypeUnknown             CommandType = "unknown"
)

// ParseCommandType maps a provider string to a CommandType, defaulting to unknown.
func ParseCommandType(s string) CommandType {
	switch CommandType(s) {
	case CommandTypeQueueModification,
		CommandTypeSystemConfiguration,
		CommandTypeStatusQuery,
		CommandTypeAnalytics,
		CommandTypeAdvanced:
		return CommandType(s)
	default:
		return CommandTypeUnknown
	}
}

// Command processing status values.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// DefaultPriority is applied when a request omits the priority field.
const DefaultPriority = 3

// CommandRequest is a natural language command submitted for parsing.
// Immutable once received.
type CommandRequest struct {
	Command  string                 `json:"command"`
	Context  map[string]interface{} `json:"context,omitempty"`
	UserID   string                 `json:"user_id,omitempty"`
	Priority int                    `json:"priority,omitempty"`
}

// Validate checks the request against the API contract.
func (r CommandRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Command, validation.Required, validation.Length(1, 1000)),
		validation.Field(&r.Priority, validation.Min(0), validation.Max(5)),
	)
}

// EffectivePriority returns the request priority, defaulting when unset.
func (r CommandRequest) EffectivePriority() int {
	if r.Priority == 0 {
		return DefaultPriority
	}
	return r.Priority
}

// ParsedResult is the structured output of an AI provider. It is untrusted
// until validated: Valid=false means the provider could not parse the
// command and the result is treated as a provider failure.
type ParsedResult struct {
	Intent      string                 `json:"intent"`
	CommandType string                 `json:"command_type"`
	Parameters  map[string]interface{} `json:"parameters"`
	Confidence  float64                `json:"confidence"`
	Valid       bool                   `json:"valid"`
	Error       *string                `json:"error,omitempty"`
	Reasoning   string                 `json:"reasoning,omitempty"`
}

// ErrorMessage returns the provider's failure description, if any.
func (p ParsedResult) ErrorMessage() string {
	if p.Error != nil {
		return *p.Error
	}
	return ""
}

// CommandResponse is the typed result returned to the caller. Created once
// per request and never mutated after construction.
type CommandResponse struct {
	CommandID        string                 `json:"command_id"`
	Status           string                 `json:"status"`
	Intent           string                 `json:"intent"`
	CommandType      CommandType            `json:"command_type"`
	Parameters       map[string]interface{} `json:"parameters"`
	Confidence       float64                `json:"confidence"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Provider         string                 `json:"provider"`
	Result           map[string]interface{} `json:"result,omitempty"`
}

// BatchResponse wraps the results of a batch parse.
type BatchResponse struct {
	Results []CommandResponse `json:"results"`
	Total   int               `json:"total"`
}

// HealthResponse reports overall, per-provider, and cache health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	AIProviders   map[string]string `json:"ai_providers"`
	CacheStatus   string            `json:"cache_status"`
}

// Provider/cache health states.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthError     = "error"
	HealthDisabled  = "disabled"
)

// StatsResponse reports advisory service statistics.
type StatsResponse struct {
	UptimeSeconds  int64 `json:"uptime_seconds"`
	ActiveRequests int64 `json:"active_requests"`
	AIProviders    int   `json:"ai_providers"`
	CacheEnabled   bool  `json:"cache_enabled"`
}

// CommandRecord is one entry in the command history.
type CommandRecord struct {
	ID               string      `json:"id"`
	Command          string      `json:"command"`
	Intent           string      `json:"intent"`
	CommandType      CommandType `json:"command_type"`
	Status           string      `json:"status"`
	Provider         string      `json:"provider"`
	Confidence       float64     `json:"confidence"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	UserID           string      `json:"user_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
