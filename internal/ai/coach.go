package ai

import (
	"context"
	"fmt"
	"strings"

	"goaly/internal/gateway/provider"
	"goaly/internal/prompt"
)

const fallbackCoach = "Pick one goal and do a 12-minute start right now."

// Coach 根据待办目标生成一句简短的教练建议（自由文本）。
func (s *Service) Coach(ctx context.Context, pending []PendingGoal) (string, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return "", err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "get_ai_coaching", map[string]any{"model": s.cfg.ModelText})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "call", nil)
	raw, err := s.complete(ctx, "get_ai_coaching", provider.CompletionRequest{
		Model: s.cfg.ModelText,
		Messages: []provider.Message{
			provider.UserMessage(fmt.Sprintf(s.prompts.Get(prompt.CoachUser), goalsBlock(pending))),
		},
		Temperature: f64(0.6),
		MaxTokens:   250,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return "", err
	}

	if strings.TrimSpace(raw) == "" {
		return fallbackCoach, nil
	}
	return raw, nil
}

func goalsBlock(pending []PendingGoal) string {
	var lines []string
	for _, g := range pending {
		lines = append(lines, fmt.Sprintf("- [%s] %s", g.Timeframe, g.Text))
	}
	if len(lines) == 0 {
		return "Clear board."
	}
	return strings.Join(lines, "\n")
}
