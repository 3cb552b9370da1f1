package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaly/internal/gateway/provider"
	"goaly/internal/observability"
)

// stubCompleter 固定返回一段文本并统计调用次数。
type stubCompleter struct {
	reply string
	err   error
	calls int

	lastReq provider.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req provider.CompletionRequest) (string, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestService(c ChatCompleter) *Service {
	return NewService(ServiceParams{
		Config: provider.Config{
			APIKey:      "sk-test",
			BaseURL:     "https://openrouter.ai/api/v1",
			ModelText:   "google/gemini-2.0-flash",
			ModelVision: "google/gemini-2.0-flash",
			Temperature: 0.4,
			MaxTokens:   800,
		},
		Client: c,
		Tracer: observability.NoopTracer{},
	})
}

func TestRequireAPIKeyBlocksBeforeTransport(t *testing.T) {
	stub := &stubCompleter{reply: "{}"}
	svc := NewService(ServiceParams{Config: provider.Config{}, Client: stub})
	ctx := context.Background()

	_, err := svc.Coach(ctx, nil)
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.Decompose(ctx, "learn piano")
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.Refine(ctx, "read more", "weekly")
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.Tips(ctx, "run 5k", "daily")
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.Plan(ctx, "be healthier")
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.Report(ctx, nil, nil)
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
	_, err = svc.VerifyEvidence(ctx, "run 5k", "data:image/jpeg;base64,AAAA")
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)

	// 缺少 API Key 时不允许发起任何网络调用
	assert.Equal(t, 0, stub.calls)
}

func TestTransportErrorPropagates(t *testing.T) {
	boom := errors.New("openrouter: status=429: rate limited")
	svc := newTestService(&stubCompleter{err: boom})

	_, err := svc.Tips(context.Background(), "run 5k", "daily")
	assert.ErrorIs(t, err, boom)
}

func TestTipsParsesProseWrappedJSON(t *testing.T) {
	stub := &stubCompleter{reply: "Here's advice: {\"tips\":[\"Write first\",\"Set timer\"]}"}
	svc := newTestService(stub)

	tips, err := svc.Tips(context.Background(), "write a novel", "yearly")
	require.NoError(t, err)
	assert.Equal(t, []string{"Write first", "Set timer"}, tips)
	assert.Equal(t, 1, stub.calls)
}

func TestTipsFallbackWhenNothingUsable(t *testing.T) {
	cases := []string{
		"no json at all",
		`{"tips": "not a list"}`,
		`{"tips": [1, 2, 3]}`,
		`{"tips": ["", "   "]}`,
		`{}`,
	}
	for _, raw := range cases {
		svc := newTestService(&stubCompleter{reply: raw})
		tips, err := svc.Tips(context.Background(), "run 5k", "daily")
		require.NoError(t, err, raw)
		assert.Equal(t, FallbackTips, tips, raw)
	}
}

func TestDecomposeCapsAndDrops(t *testing.T) {
	raw := `{"daily":["a","b","c","d"],"weekly":[7,"w1","w2","w3"],"monthly":["m1","m2"]}`
	svc := newTestService(&stubCompleter{reply: raw})

	dec, err := svc.Decompose(context.Background(), "learn piano")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, dec.Daily)
	// 非字符串项先剔除，再截断
	assert.Equal(t, []string{"w1", "w2"}, dec.Weekly)
	assert.Equal(t, []string{"m1"}, dec.Monthly)
}

func TestDecomposeMalformedYieldsEmptyLists(t *testing.T) {
	svc := newTestService(&stubCompleter{reply: "the model rambled with no json"})

	dec, err := svc.Decompose(context.Background(), "learn piano")
	require.NoError(t, err)
	assert.Empty(t, dec.Daily)
	assert.Empty(t, dec.Weekly)
	assert.Empty(t, dec.Monthly)
}

func TestVerifyEvidenceFallbacks(t *testing.T) {
	t.Run("missing keys", func(t *testing.T) {
		svc := newTestService(&stubCompleter{reply: `{"something":"else"}`})
		res, err := svc.VerifyEvidence(context.Background(), "run 5k", "data:image/jpeg;base64,AAAA")
		require.NoError(t, err)
		assert.False(t, res.Verified)
		assert.Equal(t, fallbackEvidenceMissing, res.Feedback)
	})

	t.Run("empty feedback", func(t *testing.T) {
		svc := newTestService(&stubCompleter{reply: `{"verified": true, "feedback": "   "}`})
		res, err := svc.VerifyEvidence(context.Background(), "run 5k", "data:image/jpeg;base64,AAAA")
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, fallbackEvidenceEmpty, res.Feedback)
	})

	t.Run("feedback truncated", func(t *testing.T) {
		long := ""
		for i := 0; i < 40; i++ {
			long += "0123456789"
		}
		svc := newTestService(&stubCompleter{reply: `{"verified": true, "feedback": "` + long + `"}`})
		res, err := svc.VerifyEvidence(context.Background(), "run 5k", "data:image/jpeg;base64,AAAA")
		require.NoError(t, err)
		assert.Len(t, res.Feedback, evidenceFeedbackMax)
	})

	t.Run("vision request shape", func(t *testing.T) {
		stub := &stubCompleter{reply: `{"verified": true, "feedback": "Looks like a real finish-line photo."}`}
		svc := newTestService(stub)
		res, err := svc.VerifyEvidence(context.Background(), "run 5k", "data:image/png;base64,AAAA")
		require.NoError(t, err)
		assert.True(t, res.Verified)
		require.Len(t, stub.lastReq.Messages, 2)
		user := stub.lastReq.Messages[1]
		require.Len(t, user.Parts, 2)
		assert.Equal(t, "image_url", user.Parts[1].Type)
		assert.Equal(t, "data:image/png;base64,AAAA", user.Parts[1].ImageURL.URL)
		require.NotNil(t, stub.lastReq.Temperature)
		assert.Equal(t, 0.2, *stub.lastReq.Temperature)
		assert.Equal(t, 250, stub.lastReq.MaxTokens)
	})
}

func TestCoachFallbackAndGoalsBlock(t *testing.T) {
	stub := &stubCompleter{reply: ""}
	svc := newTestService(stub)

	msg, err := svc.Coach(context.Background(), []PendingGoal{
		{Timeframe: "daily", Text: "run 5k"},
		{Timeframe: "weekly", Text: "read a book"},
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackCoach, msg)
	assert.Contains(t, stub.lastReq.Messages[0].Content, "- [daily] run 5k")
	assert.Contains(t, stub.lastReq.Messages[0].Content, "- [weekly] read a book")

	// 无待办目标时提示词使用占位文案
	_, err = svc.Coach(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.Messages[0].Content, "Clear board.")
}

func TestPlanIndependentKeys(t *testing.T) {
	raw := `{"daily":["d1","d2","d3","d4"],"weekly":"oops","yearly":["y1"]}`
	svc := newTestService(&stubCompleter{reply: raw})

	plan, err := svc.Plan(context.Background(), "become a writer")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3"}, plan.Daily)
	assert.Empty(t, plan.Weekly)
	assert.Empty(t, plan.Monthly)
	assert.Equal(t, []string{"y1"}, plan.Yearly)
}

func TestReportFallbackAndJoin(t *testing.T) {
	stub := &stubCompleter{reply: "   "}
	svc := newTestService(stub)

	msg, err := svc.Report(context.Background(), []string{"ran marathon", ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, fallbackReport, msg)
	assert.Contains(t, stub.lastReq.Messages[0].Content, "Wins: ran marathon")
	assert.Contains(t, stub.lastReq.Messages[0].Content, "Lessons from failures: (none)")
}

func TestRefineNonListCoercedToEmpty(t *testing.T) {
	svc := newTestService(&stubCompleter{reply: `{"subgoals": {"nested": true}}`})
	out, err := svc.Refine(context.Background(), "read more", "monthly")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDataURL(t *testing.T) {
	url := DataURL([]byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	assert.Equal(t, "data:image/png;base64,iVBORw==", url)
}
