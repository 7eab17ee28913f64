package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CommandRequest
		wantErr bool
	}{
		{
			name:    "valid minimal request",
			request: CommandRequest{Command: "Enable starvation mode"},
			wantErr: false,
		},
		{
			name: "valid with priority and context",
			request: CommandRequest{
				Command:  "Set worker count to 8",
				Priority: 5,
				Context:  map[string]interface{}{"source": "dashboard"},
			},
			wantErr: false,
		},
		{
			name:    "empty command rejected",
			request: CommandRequest{Command: ""},
			wantErr: true,
		},
		{
			name:    "oversize command rejected",
			request: CommandRequest{Command: strings.Repeat("x", 1001)},
			wantErr: true,
		},
		{
			name:    "command at max length accepted",
			request: CommandRequest{Command: strings.Repeat("x", 1000)},
			wantErr: false,
		},
		{
			name:    "priority above range rejected",
			request: CommandRequest{Command: "Pause queue processing", Priority: 6},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandRequest_EffectivePriority(t *testing.T) {
	assert.Equal(t, DefaultPriority, CommandRequest{Command: "x"}.EffectivePriority())
	assert.Equal(t, 1, CommandRequest{Command: "x", Priority: 1}.EffectivePriority())
}

func TestParseCommandType(t *testing.T) {
	assert.Equal(t, CommandTypeQueueModification, ParseCommandType("queue_modification"))
	assert.Equal(t, CommandTypeSystemConfiguration, ParseCommandType("system_configuration"))
	assert.Equal(t, CommandTypeStatusQuery, ParseCommandType("status_query"))
	assert.Equal(t, CommandTypeAnalytics, ParseCommandType("analytics"))
	assert.Equal(t, CommandTypeAdvanced, ParseCommandType("advanced"))
	assert.Equal(t, CommandTypeUnknown, ParseCommandType("something_else"))
	assert.Equal(t, CommandTypeUnknown, ParseCommandType(""))
}

func TestParsedResult_ErrorMessage(t *testing.T) {
	msg := "cannot parse"
	assert.Equal(t, "cannot parse", ParsedResult{Error: &msg}.ErrorMessage())
	assert.Equal(t, "", ParsedResult{}.ErrorMessage())
}
