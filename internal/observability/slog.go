package observability

import (
	"context"
	"time"

	"goaly/internal/logger"
)

// LogTracer 把 trace/span 写入应用日志（debug 级别），
// 作为未接入外部追踪后端时的本地兜底。
type LogTracer struct{}

func (LogTracer) Trace(ctx context.Context, name string, metadata map[string]any) (context.Context, EndFunc) {
	start := time.Now()
	logger.Debugf("[trace] start name=%s meta=%v", name, metadata)
	return withTraceName(ctx, name), func(err error) {
		if err != nil {
			logger.Debugf("[trace] end name=%s dur_ms=%d err=%v", name, elapsedMS(start), err)
			return
		}
		logger.Debugf("[trace] end name=%s dur_ms=%d", name, elapsedMS(start))
	}
}

func (LogTracer) Span(ctx context.Context, name string, metadata map[string]any) (context.Context, EndFunc) {
	start := time.Now()
	trace, _ := TraceName(ctx)
	return ctx, func(err error) {
		if err != nil {
			logger.Debugf("[span] trace=%s name=%s dur_ms=%d meta=%v err=%v", trace, name, elapsedMS(start), metadata, err)
			return
		}
		logger.Debugf("[span] trace=%s name=%s dur_ms=%d meta=%v", trace, name, elapsedMS(start), metadata)
	}
}

// FromConfig 选择 tracer 实现：未启用时返回 no-op。
func FromConfig(enabled bool) Tracer {
	if enabled {
		return LogTracer{}
	}
	return NoopTracer{}
}
