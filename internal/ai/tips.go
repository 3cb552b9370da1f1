package ai

import (
	"context"
	"fmt"

	"goaly/internal/gateway/provider"
	"goaly/internal/pkg/jsonutil"
	"goaly/internal/prompt"
)

// FallbackTips 在模型给不出任何可用条目时替换返回。
var FallbackTips = []string{"Break it down", "Schedule time", "Track progress"}

// Tips 针对单个目标生成至多 3 条提示；清洗后为空则返回固定兜底。
func (s *Service) Tips(ctx context.Context, goalText, timeframe string) ([]string, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "get_goal_tips", map[string]any{
		"model":     s.cfg.ModelText,
		"timeframe": timeframe,
	})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "get_goal_tips", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.SystemMessage(s.prompts.Get(prompt.TipsSystem)),
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.TipsUser), timeframe, goalText)),
		},
		ResponseFormat: provider.JSONObjectFormat(),
		Temperature:    f64(0.6),
		MaxTokens:      250,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return nil, err
	}

	tips := stringList(jsonutil.CoerceObject(raw), "tips", 3)
	if len(tips) == 0 {
		return append([]string(nil), FallbackTips...), nil
	}
	return tips, nil
}
