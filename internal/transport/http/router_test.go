package webhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaly/internal/ai"
	"goaly/internal/gateway/provider"
	"goaly/internal/goals"
	"goaly/internal/store"
)

// memStore 内存目标/统计存储，handler 测试用。
type memStore struct {
	nextID int64
	goals  map[int64]store.GoalRecord
	stats  map[string]store.StatsRecord
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, goals: map[int64]store.GoalRecord{}, stats: map[string]store.StatsRecord{}}
}

func (m *memStore) CreateGoal(_ context.Context, rec *store.GoalRecord) error {
	rec.ID = m.nextID
	m.nextID++
	m.goals[rec.ID] = *rec
	return nil
}

func (m *memStore) GetGoal(_ context.Context, userID string, id int64) (store.GoalRecord, error) {
	rec, ok := m.goals[id]
	if !ok || rec.UserID != userID {
		return store.GoalRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) ListGoals(_ context.Context, q store.GoalQuery) ([]store.GoalRecord, error) {
	var out []store.GoalRecord
	for _, rec := range m.goals {
		if q.UserID != "" && rec.UserID != q.UserID {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		if q.Timeframe != "" && rec.Timeframe != q.Timeframe {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) UpdateGoal(_ context.Context, rec *store.GoalRecord) error {
	old, ok := m.goals[rec.ID]
	if !ok || old.UserID != rec.UserID {
		return store.ErrNotFound
	}
	m.goals[rec.ID] = *rec
	return nil
}

func (m *memStore) DeleteGoal(_ context.Context, userID string, id int64) error {
	rec, ok := m.goals[id]
	if !ok || rec.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *memStore) GetStats(_ context.Context, userID string) (store.StatsRecord, error) {
	if rec, ok := m.stats[userID]; ok {
		return rec, nil
	}
	return store.StatsRecord{UserID: userID, DisciplineScore: 100}, nil
}

func (m *memStore) SaveStats(_ context.Context, rec store.StatsRecord) error {
	m.stats[rec.UserID] = rec
	return nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, provider.CompletionRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestServer(t *testing.T, completer ai.ChatCompleter) (*Server, *memStore) {
	t.Helper()
	ms := newMemStore()
	aiSvc := ai.NewService(ai.ServiceParams{
		Config: provider.Config{APIKey: "sk-test", ModelText: "m", ModelVision: "m"},
		Client: completer,
	})
	srv, err := NewServer(ServerConfig{
		Addr:  ":0",
		Goals: goals.NewService(ms, ms),
		AI:    aiSvc,
	})
	require.NoError(t, err)
	return srv, ms
}

func doJSON(t *testing.T, srv *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestGoalCRUDOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{reply: "{}"})

	w := doJSON(t, srv, http.MethodPost, "/api/goals", "u1", map[string]any{
		"text": "run 5k", "timeframe": "weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Goal store.GoalRecord `json:"goal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "run 5k", created.Goal.Text)

	// 其他用户看不到
	w = doJSON(t, srv, http.MethodGet, "/api/goals", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"goals":[]`)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/1/toggle", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = doJSON(t, srv, http.MethodDelete, "/api/goals/1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/goals/1", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTipsEndpointAISource(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{reply: `{"tips":["Write first","Set timer"]}`})

	w := doJSON(t, srv, http.MethodPost, "/api/goals", "u1", map[string]any{"text": "write a novel", "timeframe": "yearly"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/1/tips", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Tips   []string `json:"tips"`
		Source string   `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Write first", "Set timer"}, resp.Tips)
	assert.Equal(t, sourceAI, resp.Source)

	// 提示写回目标
	w = doJSON(t, srv, http.MethodGet, "/api/goals/1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Write first")
}

func TestCapabilityEndpointsFallBackOnTransportError(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{err: errors.New("openrouter: status=500: boom")})

	w := doJSON(t, srv, http.MethodPost, "/api/coach/chat", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"source":"fallback"`)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/refine", "u1", map[string]any{"text": "read more", "timeframe": "weekly"})
	require.Equal(t, http.StatusOK, w.Code)
	var refine struct {
		Subgoals []string `json:"subgoals"`
		Source   string   `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refine))
	assert.Equal(t, sourceFallback, refine.Source)
	assert.Len(t, refine.Subgoals, 3)

	w = doJSON(t, srv, http.MethodPost, "/api/planner/generate", "u1", map[string]any{"visions": "be healthier"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"fallback"`)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/decompose", "u1", map[string]any{"text": "learn piano"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"fallback"`)

	w = doJSON(t, srv, http.MethodGet, "/api/report/yearly", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"fallback"`)
}

func TestValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{reply: "{}"})

	w := doJSON(t, srv, http.MethodPost, "/api/goals", "u1", map[string]any{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/refine", "u1", map[string]any{"timeframe": "daily"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/goals/abc/toggle", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{reply: "{}"})

	w := doJSON(t, srv, http.MethodPost, "/api/goals", "u1", map[string]any{"text": "run 5k", "timeframe": "daily"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, srv, http.MethodPost, "/api/goals/1/toggle", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/stats", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"points":10`)
	assert.True(t, strings.Contains(w.Body.String(), `"streak":1`))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubCompleter{reply: "{}"})
	w := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
