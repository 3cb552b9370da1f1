package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:      "sk-test",
		BaseURL:     baseURL,
		ModelText:   "google/gemini-2.0-flash",
		ModelVision: "google/gemini-2.0-flash",
		SiteURL:     "https://goaly.app",
		AppName:     "Goaly",
		Temperature: 0.4,
		MaxTokens:   800,
	}
}

func TestCompleteSendsOpenRouterHeadersAndBody(t *testing.T) {
	var gotBody map[string]any
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), 5*time.Second)
	out, err := c.Complete(context.Background(), CompletionRequest{
		Messages:       []Message{UserMessage("hi")},
		ResponseFormat: JSONObjectFormat(),
		MaxTokens:      250,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "Bearer sk-test", gotHeader.Get("Authorization"))
	assert.Equal(t, "https://goaly.app", gotHeader.Get("HTTP-Referer"))
	assert.Equal(t, "Goaly", gotHeader.Get("X-Title"))

	// 未指定时回落到配置的文本模型与默认温度
	assert.Equal(t, "google/gemini-2.0-flash", gotBody["model"])
	assert.Equal(t, 0.4, gotBody["temperature"])
	assert.Equal(t, float64(250), gotBody["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
}

func TestCompleteMultimodalEncoding(t *testing.T) {
	var gotBody struct {
		Messages []json.RawMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), 5*time.Second)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			SystemMessage("sys"),
			UserImageMessage("look", "data:image/jpeg;base64,AAAA"),
		},
	})
	require.NoError(t, err)
	require.Len(t, gotBody.Messages, 2)
	assert.JSONEq(t, `{"role":"system","content":"sys"}`, string(gotBody.Messages[0]))
	assert.JSONEq(t, `{"role":"user","content":[
		{"type":"text","text":"look"},
		{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,AAAA"}}
	]}`, string(gotBody.Messages[1]))
}

func TestCompleteUpstreamErrorSurfaced(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), 5*time.Second)
	_, err := c.Complete(context.Background(), CompletionRequest{Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
	assert.Contains(t, err.Error(), "rate limited")
	// 不重试
	assert.Equal(t, 1, calls)
}

// choices 缺失时按空输出处理，不算传输错误。
func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), 5*time.Second)
	out, err := c.Complete(context.Background(), CompletionRequest{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestCompleteRejectsEmptyMessages(t *testing.T) {
	c := NewClient(testConfig("https://unused.invalid"), 5*time.Second)
	_, err := c.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
}
