package provider

import (
	"encoding/json"
	"fmt"
)

// BuildPrompt assembles the instruction prompt sent to every provider. It
// embeds the raw command, the serialized request context when present, the
// catalogue of supported command shapes, and the output-schema contract
// with its two canonical shapes (parsed and could-not-parse).
func BuildPrompt(command string, context map[string]interface{}) string {
	contextStr := ""
	if len(context) > 0 {
		if raw, err := json.MarshalIndent(context, "", "  "); err == nil {
			contextStr = fmt.Sprintf("\nContext: %s\n", raw)
		}
	}

	return fmt.Sprintf(`You are an AI assistant that parses natural language commands for an ad processing queue system.

Parse the following command and return a JSON response with the command details:

Command: "%s"%s

Supported command types and their formats:

1. Queue Modification Commands:
   - "Change priority to {X} for all ads in the {gameFamily} family"
   - "Set priority to {X} for ads older than {Y} minutes"
   - "Boost priority for ads waiting longer than {X} minutes"
   - "Remove ads from {gameFamily} family from queue"

2. System Configuration Commands:
   - "Enable starvation mode"
   - "Disable starvation mode"
   - "Set maximum wait time to {X} seconds"
   - "Set worker count to {X}"
   - "Pause queue processing"
   - "Resume queue processing"

3. Status and Analytics Commands:
   - "Show the next {X} ads to be processed"
   - "List all ads waiting longer than {X} minutes"
   - "What's the current queue distribution by priority?"
   - "Show queue performance summary"
   - "Get processing statistics"
   - "Show ads by game family {gameFamily}"

4. Advanced Commands:
   - "Create performance report for last {X} hours"
   - "Export queue data to CSV"
   - "Predict processing time for priority {X}"
   - "Optimize queue for maximum throughput"

Return ONLY a JSON object in this format:
{
  "intent": "specific_action_name",
  "command_type": "queue_modification|system_configuration|status_query|analytics|advanced",
  "parameters": {
    "parameter_name": "parameter_value"
  },
  "confidence": 0.95,
  "valid": true,
  "error": null,
  "reasoning": "Brief explanation of the parsing"
}

If the command cannot be parsed, return:
{
  "intent": "unknown",
  "command_type": "unknown",
  "parameters": {},
  "confidence": 0.0,
  "valid": false,
  "error": "Detailed error description",
  "reasoning": "Why the command couldn't be parsed"
}

Priority values must be between 1-5. Validate all numeric parameters. Provide confidence score (0.0-1.0).`, command, contextStr)
}
