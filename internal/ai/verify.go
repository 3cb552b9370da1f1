package ai

import (
	"context"
	"fmt"

	"goaly/internal/gateway/provider"
	"goaly/internal/pkg/jsonutil"
	"goaly/internal/pkg/text"
	"goaly/internal/prompt"
)

const (
	fallbackEvidenceMissing = "Could not confidently verify evidence from the provided image."
	fallbackEvidenceEmpty   = "Could not determine clear evidence; try a clearer photo."

	evidenceFeedbackMax = 300
)

// VerifyEvidence 用视觉模型核验目标完成证据。
// 模型输出形状不合格时降级为“未核验 + 通用反馈”，不报错；
// 只有配置错误与传输错误会上抛。
func (s *Service) VerifyEvidence(ctx context.Context, goalText, imageDataURL string) (EvidenceResult, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return EvidenceResult{}, err
	}

	ctx, endTrace := s.tracer.Trace(ctx, "verify_goal_evidence", map[string]any{"model": s.cfg.ModelVision})
	var traceErr error
	defer func() { endTrace(traceErr) }()

	_, endCall := s.tracer.Span(ctx, "prompt_and_call", nil)
	raw, err := s.complete(ctx, "verify_goal_evidence", provider.CompletionRequest{
		Model: s.cfg.ModelVision,
		Messages: []provider.Message{
			provider.SystemMessage(s.prompts.Get(prompt.EvidenceSystem)),
			provider.UserImageMessage(fmt.Sprintf(s.prompts.Get(prompt.EvidenceUser), goalText), imageDataURL),
		},
		ResponseFormat: provider.JSONObjectFormat(),
		Temperature:    f64(0.2),
		MaxTokens:      250,
	})
	endCall(err)
	if err != nil {
		traceErr = err
		return EvidenceResult{}, err
	}

	_, endParse := s.tracer.Span(ctx, "parse_and_validate", nil)
	defer endParse(nil)

	obj := jsonutil.CoerceObject(raw)
	if !evidenceShapeOK(obj) {
		return EvidenceResult{Verified: false, Feedback: fallbackEvidenceMissing}, nil
	}
	feedback := text.Truncate(stringField(obj, "feedback"), evidenceFeedbackMax)
	if feedback == "" {
		feedback = fallbackEvidenceEmpty
	}
	return EvidenceResult{
		Verified: boolField(obj, "verified", false),
		Feedback: feedback,
	}, nil
}
