package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"ai-command-agent/internal/models"
)

// resultSchema is the contract the embedded provider JSON must satisfy
// before it is trusted as a ParsedResult.
const resultSchema = `{
  "type": "object",
  "required": ["intent", "command_type", "parameters", "confidence", "valid"],
  "properties": {
    "intent": {"type": "string", "minLength": 1},
    "command_type": {
      "type": "string",
      "enum": ["queue_modification", "system_configuration", "status_query", "analytics", "advanced", "unknown"]
    },
    "parameters": {"type": "object"},
    "confidence": {"type": "number", "minimum": 0.0, "maximum": 1.0},
    "valid": {"type": "boolean"},
    "error": {"type": ["string", "null"]},
    "reasoning": {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(resultSchema)

// DecodeResult validates the text a provider embedded in its completion and
// decodes it into a ParsedResult. Markdown code fences around the JSON are
// tolerated. Any schema violation is a provider failure.
func DecodeResult(text string) (*models.ParsedResult, error) {
	cleaned := stripCodeFence(text)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("provider response schema violation: %s", strings.Join(issues, "; "))
	}

	var parsed models.ParsedResult
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal provider response: %w", err)
	}
	if parsed.Parameters == nil {
		parsed.Parameters = map[string]interface{}{}
	}
	return &parsed, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
