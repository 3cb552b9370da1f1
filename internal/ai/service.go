package ai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"goaly/internal/gateway/provider"
	"goaly/internal/logger"
	"goaly/internal/metrics"
	"goaly/internal/observability"
	"goaly/internal/prompt"
)

// 中文说明：
// Service 聚合七个 AI 能力函数。每个能力：取配置 → 校验 API Key →
// 组装提示词 → 一次传输调用（trace/span 包裹）→ best-effort JSON 解析 →
// 归一化到固定形态。传输失败原样上抛，由调用方（web 层）套用静态兜底。

// ChatCompleter 是能力层对传输层的唯一依赖。
type ChatCompleter interface {
	Complete(ctx context.Context, req provider.CompletionRequest) (string, error)
}

type ServiceParams struct {
	Config  provider.Config
	Client  ChatCompleter
	Tracer  observability.Tracer
	Metrics *metrics.Metrics
	Calls   CallObserver
	Prompts *prompt.Manager
}

type Service struct {
	cfg     provider.Config
	client  ChatCompleter
	tracer  observability.Tracer
	metrics *metrics.Metrics
	calls   CallObserver
	prompts *prompt.Manager
}

func NewService(p ServiceParams) *Service {
	if p.Tracer == nil {
		p.Tracer = observability.NoopTracer{}
	}
	if p.Prompts == nil {
		p.Prompts = prompt.NewManager("")
	}
	return &Service{
		cfg:     p.Config,
		client:  p.Client,
		tracer:  p.Tracer,
		metrics: p.Metrics,
		calls:   p.Calls,
		prompts: p.Prompts,
	}
}

// complete 执行一次传输调用并记录观测数据。不重试。
func (s *Service) complete(ctx context.Context, capability string, req provider.CompletionRequest) (string, error) {
	system, user, images := summarizeMessages(req.Messages)
	logger.LogLLMRequest(capability, req.Model, system, user, images, "")

	start := time.Now()
	raw, err := s.client.Complete(ctx, req)
	dur := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveCapability(capability, outcome, dur)
	if s.calls != nil {
		rec := CallRecord{
			TraceID:    uuid.NewString(),
			Capability: capability,
			Model:      req.Model,
			DurationMS: dur.Milliseconds(),
			OK:         err == nil,
			RawSnippet: snippet(raw, 400),
		}
		if err != nil {
			rec.Err = err.Error()
		}
		s.calls.ObserveCall(rec)
	}
	if err != nil {
		logger.Warnf("[ai] 能力 %s 调用失败: %v", capability, err)
		return "", err
	}
	logger.LogLLMResponse(capability, req.Model, raw)
	return raw, nil
}

func summarizeMessages(msgs []provider.Message) (system, user string, images int) {
	for _, m := range msgs {
		switch m.Role {
		case provider.RoleSystem:
			system = m.Content
		case provider.RoleUser:
			if m.Content != "" {
				user = m.Content
			}
			for _, p := range m.Parts {
				switch p.Type {
				case "text":
					user = p.Text
				case "image_url":
					images++
				}
			}
		}
	}
	return system, user, images
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func f64(v float64) *float64 { return &v }
