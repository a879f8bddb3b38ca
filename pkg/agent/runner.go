package agent

import (
	"context"
	"fmt"
	"strings"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/pkg/llm"
)

// DefaultMaxToolTurns bounds the think-act loop for one exchange.
const DefaultMaxToolTurns = 4

// Result is the outcome of one completed exchange.
type Result struct {
	// Output is the assistant's final reply, without the token trailer.
	Output string
	// TotalTokens is the sum of token usage across every model call in the
	// loop, tool turns included.
	TotalTokens int
	// ToolCallsInvoked lists tool names in invocation order, duplicates kept.
	ToolCallsInvoked []string
}

// SearchInvoked reports whether documentation retrieval ran this turn.
func (r *Result) SearchInvoked() bool {
	return r.invoked(constant.ToolSearchDocumentation)
}

// TicketCreated reports whether the ticket tool ran this turn.
func (r *Result) TicketCreated() bool {
	return r.invoked(constant.ToolCreateSupportTicket)
}

// SummarySaved reports whether the summary tool ran this turn.
func (r *Result) SummarySaved() bool {
	return r.invoked(constant.ToolSaveSummary)
}

func (r *Result) invoked(name string) bool {
	for _, n := range r.ToolCallsInvoked {
		if n == name {
			return true
		}
	}
	return false
}

// Runner drives the model through a bounded tool loop: call the model, run
// whatever tools it requested, feed the results back, repeat until the model
// answers in plain text or the budget runs out.
type Runner struct {
	provider     llm.LLMProvider
	tools        *Toolset
	prompts      *PromptBuilder
	maxToolTurns int
	log          logger.ILogger
}

func NewRunner(
	provider llm.LLMProvider,
	tools *Toolset,
	prompts *PromptBuilder,
	maxToolTurns int,
	log logger.ILogger,
) *Runner {
	if maxToolTurns <= 0 {
		maxToolTurns = DefaultMaxToolTurns
	}
	return &Runner{
		provider:     provider,
		tools:        tools,
		prompts:      prompts,
		maxToolTurns: maxToolTurns,
		log:          log,
	}
}

// Run executes one exchange. history holds prior turns in chronological
// order, already trimmed to the retention window.
func (r *Runner) Run(ctx context.Context, turn TurnContext, history []llm.Message) (*Result, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: r.prompts.Build(turn),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: turn.Message,
	})

	result := &Result{}
	specs := r.tools.Specs()

	for toolTurn := 0; ; toolTurn++ {
		res, err := r.provider.Chat(ctx, messages, llm.WithTools(specs), llm.WithTemperature(0.2))
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		result.TotalTokens += res.Usage.TotalTokens

		if len(res.ToolCalls) == 0 {
			result.Output = StripTokenTrailer(res.Content)
			return result, nil
		}

		if toolTurn >= r.maxToolTurns {
			r.log.Warn("agent", "tool budget exhausted, forcing a plain answer", map[string]interface{}{
				"conversation_id": turn.ConversationID,
				"tool_turns":      toolTurn,
			})
			if res.Content != "" {
				result.Output = StripTokenTrailer(res.Content)
				return result, nil
			}
			return r.finishWithoutTools(ctx, messages, result)
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})

		for _, call := range res.ToolCalls {
			result.ToolCallsInvoked = append(result.ToolCallsInvoked, call.Name)

			outcome := r.tools.Execute(ctx, turn, call, messages)

			r.log.Info("agent", "tool executed", map[string]interface{}{
				"conversation_id": turn.ConversationID,
				"tool":            call.Name,
				"failed":          strings.HasPrefix(outcome, "FAILURE:"),
			})

			messages = append(messages, llm.Message{
				Role:     "tool",
				ToolName: call.Name,
				Content:  outcome,
			})
		}
	}
}

// finishWithoutTools asks the model one last time with no tools offered, so
// an over-eager tool caller still produces a user-facing reply.
func (r *Runner) finishWithoutTools(ctx context.Context, messages []llm.Message, result *Result) (*Result, error) {
	res, err := r.provider.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("final model call failed: %w", err)
	}
	result.TotalTokens += res.Usage.TotalTokens
	result.Output = StripTokenTrailer(res.Content)
	return result, nil
}

// StripTokenTrailer drops any "TotalToken: N" line the model wrote itself.
// The service appends the authoritative trailer from the measured usage.
func StripTokenTrailer(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if strings.HasPrefix(last, "TotalToken:") || last == "" {
			lines = lines[:len(lines)-1]
			continue
		}
		break
	}
	return strings.Join(lines, "\n")
}

// AppendTokenTrailer formats the final user-facing output.
func AppendTokenTrailer(output string, totalTokens int) string {
	return fmt.Sprintf("%s\n\nTotalToken: %d", output, totalTokens)
}
