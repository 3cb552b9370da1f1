package ai

import (
	"context"
	"fmt"

	"goaly/internal/gateway/provider"
	"goaly/internal/pkg/jsonutil"
	"goaly/internal/prompt"
)

// Refine 把一个目标细化为至多 3 个子目标。
// subgoals 不是列表时视为空列表，不报错。
func (s *Service) Refine(ctx context.Context, goalText, timeframe string) ([]string, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "refine_goal", map[string]any{
		"model":     s.cfg.ModelText,
		"timeframe": timeframe,
	})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "refine_goal", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.SystemMessage(s.prompts.Get(prompt.RefineSystem)),
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.RefineUser), timeframe, goalText)),
		},
		ResponseFormat: provider.JSONObjectFormat(),
		Temperature:    f64(0.5),
		MaxTokens:      300,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return nil, err
	}

	return stringList(jsonutil.CoerceObject(raw), "subgoals", 3), nil
}
