package eval

import (
	"testing"

	"cs-agent-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestExpectedToolCalls(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		reply    string
		expected []string
	}{
		{
			name:     "technical question expects search",
			message:  "How do I configure the VPN client?",
			expected: []string{constant.ToolSearchDocumentation},
		},
		{
			name:     "error report expects search",
			message:  "The sync job keeps failing with error 500",
			expected: []string{constant.ToolSearchDocumentation},
		},
		{
			name:     "ticket confirmation expects ticket tool",
			message:  "Yes, create the ticket please",
			expected: []string{constant.ToolCreateSupportTicket},
		},
		{
			name:     "closing expects summary tool",
			message:  "Thank you, that fixed it!",
			expected: []string{constant.ToolSaveSummary},
		},
		{
			name:     "assistant closing expects summary tool",
			message:  "ok that makes sense",
			reply:    "You're all set. Feel free to reach out again if anything comes up!",
			expected: []string{constant.ToolSaveSummary},
		},
		{
			name:     "small talk expects nothing",
			message:  "hello there",
			reply:    "Hi! How can I help you today?",
			expected: nil,
		},
		{
			name:    "mixed intent expects both",
			message: "The printer issue is resolved, thanks",
			expected: []string{
				constant.ToolSearchDocumentation,
				constant.ToolSaveSummary,
			},
		},
		{
			name:    "search intent in message, closing in reply",
			message: "How do I export my logs?",
			reply:   "Use the export button under Settings. Goodbye!",
			expected: []string{
				constant.ToolSearchDocumentation,
				constant.ToolSaveSummary,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpectedToolCalls(tt.message, tt.reply))
		})
	}
}

func TestCompareToolCalls(t *testing.T) {
	tests := []struct {
		name        string
		expected    []string
		actual      []string
		wantScore   float64
		wantMissing []string
	}{
		{
			name:      "nothing expected is a pass",
			expected:  nil,
			actual:    []string{constant.ToolSearchDocumentation},
			wantScore: 1.0,
		},
		{
			name:      "full match",
			expected:  []string{constant.ToolSearchDocumentation},
			actual:    []string{constant.ToolSearchDocumentation},
			wantScore: 1.0,
		},
		{
			name:        "missing tool halves the score",
			expected:    []string{constant.ToolSearchDocumentation, constant.ToolSaveSummary},
			actual:      []string{constant.ToolSearchDocumentation},
			wantScore:   0.5,
			wantMissing: []string{constant.ToolSaveSummary},
		},
		{
			name:        "nothing ran",
			expected:    []string{constant.ToolCreateSupportTicket},
			actual:      nil,
			wantScore:   0,
			wantMissing: []string{constant.ToolCreateSupportTicket},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, missing := CompareToolCalls(tt.expected, tt.actual)
			assert.InDelta(t, tt.wantScore, score, 0.001)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}
