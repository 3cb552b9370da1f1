package ai

import (
	"context"
	"fmt"

	"goaly/internal/gateway/provider"
	"goaly/internal/pkg/jsonutil"
	"goaly/internal/prompt"
)

// Decompose 把年度目标拆成固定数量的子目标：3 日 / 2 周 / 1 月。
// 列表先剔除非字符串与空白项，再按上限截断。
func (s *Service) Decompose(ctx context.Context, yearlyGoal string) (Decomposition, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return Decomposition{}, err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "decompose_yearly_goal", map[string]any{"model": s.cfg.ModelText})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "decompose_yearly_goal", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.SystemMessage(s.prompts.Get(prompt.DecomposeSystem)),
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.DecomposeUser), yearlyGoal)),
		},
		ResponseFormat: provider.JSONObjectFormat(),
		Temperature:    f64(0.5),
		MaxTokens:      400,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return Decomposition{}, err
	}

	obj := jsonutil.CoerceObject(raw)
	return Decomposition{
		Daily:   stringList(obj, "daily", 3),
		Weekly:  stringList(obj, "weekly", 2),
		Monthly: stringList(obj, "monthly", 1),
	}, nil
}
