package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cs-agent-be/internal/constant"
	"cs-agent-be/pkg/llm"
)

// PassingScore is the minimum judge score (out of 10) counted as a pass.
const PassingScore = 7.0

// Verdict is a judge's scored opinion.
type Verdict struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Judge runs LLM-as-judge scoring. It is only ever called from the
// background pipeline; latency here never touches a user.
type Judge struct {
	provider llm.LLMProvider
	model    string
}

func NewJudge(provider llm.LLMProvider, model string) *Judge {
	return &Judge{
		provider: provider,
		model:    model,
	}
}

// JudgeAccuracy scores an answer against reference documentation.
func (j *Judge) JudgeAccuracy(ctx context.Context, question, answer, reference string) (*Verdict, error) {
	prompt := fmt.Sprintf(constant.AccuracyJudgePromptV1, question, answer, reference)
	return j.judge(ctx, prompt)
}

// JudgeSession scores a whole conversation transcript.
func (j *Judge) JudgeSession(ctx context.Context, transcript string) (*Verdict, error) {
	prompt := fmt.Sprintf(constant.SessionJudgePromptV1, transcript)
	return j.judge(ctx, prompt)
}

func (j *Judge) judge(ctx context.Context, prompt string) (*Verdict, error) {
	opts := []llm.Option{llm.WithTemperature(0.0)}
	if j.model != "" {
		opts = append(opts, llm.WithModel(j.model))
	}

	res, err := j.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("judge call failed: %w", err)
	}

	response := strings.TrimSpace(res.Content)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var verdict Verdict
	if err := json.Unmarshal([]byte(response), &verdict); err != nil {
		return nil, fmt.Errorf("parse judge response: %w", err)
	}
	if verdict.Score < 0 || verdict.Score > 10 {
		return nil, fmt.Errorf("judge score %.1f out of range", verdict.Score)
	}

	return &verdict, nil
}
