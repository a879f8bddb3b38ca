package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall
	// ToolName is set on "tool" role messages carrying a tool result.
	ToolName string
}

// ToolCall is a model-initiated request to invoke a capability.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// ToolSpec declares a capability the model may call. Parameters follows the
// JSON-schema object convention shared by Gemini and Ollama.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Usage carries the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is one model turn: either final text or tool call requests.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	Tools       []ToolSpec
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(max int) Option {
	return func(o *Options) {
		o.MaxTokens = max
	}
}

func WithTools(tools []ToolSpec) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Response, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Response, error)
}
