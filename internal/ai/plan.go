package ai

import (
	"context"
	"fmt"

	"goaly/internal/gateway/provider"
	"goaly/internal/pkg/jsonutil"
	"goaly/internal/prompt"
)

// Plan 依据用户愿景为四个时间维度各规划至多 3 个目标。
// 四个键相互独立：某键缺失或不是列表时只影响该键（空列表）。
func (s *Service) Plan(ctx context.Context, visions string) (YearlyPlan, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return YearlyPlan{}, err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "plan_yearly_goals", map[string]any{"model": s.cfg.ModelText})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "plan_yearly_goals", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.SystemMessage(s.prompts.Get(prompt.PlanSystem)),
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.PlanUser), visions)),
		},
		ResponseFormat: provider.JSONObjectFormat(),
		Temperature:    f64(0.6),
		MaxTokens:      650,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return YearlyPlan{}, err
	}

	obj := jsonutil.CoerceObject(raw)
	return YearlyPlan{
		Daily:   stringList(obj, "daily", 3),
		Weekly:  stringList(obj, "weekly", 3),
		Monthly: stringList(obj, "monthly", 3),
		Yearly:  stringList(obj, "yearly", 3),
	}, nil
}
