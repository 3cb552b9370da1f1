package ai

import (
	"context"
	"fmt"
	"strings"

	"goaly/internal/gateway/provider"
	"goaly/internal/prompt"
)

const fallbackReport = "Your year is still being written. Keep showing up."

// Report 生成年度总结（自由文本，提示词约束在 250 词内）。
func (s *Service) Report(ctx context.Context, completedGoals, failedLessons []string) (string, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return "", err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "generate_yearly_report", map[string]any{"model": s.cfg.ModelText})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "generate_yearly_report", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.ReportUser), joinOrNone(completedGoals), joinOrNone(failedLessons))),
		},
		Temperature: f64(0.7),
		MaxTokens:   500,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return "", err
	}

	if strings.TrimSpace(raw) == "" {
		return fallbackReport, nil
	}
	return raw, nil
}

func joinOrNone(items []string) string {
	var kept []string
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return "(none)"
	}
	return strings.Join(kept, ", ")
}
