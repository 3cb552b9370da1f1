package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goaly/internal/logger"
)

// 中文说明：
// Client：OpenRouter（OpenAI 兼容 /chat/completions）传输层。
// 每次 Complete 只发一次请求：不重试、不降级、不缓存，
// 所有传输/上游错误原样抛给调用方，由各能力函数决定兜底策略。

const defaultTimeout = 60 * time.Second

// CompletionRequest 一次聊天补全的全部参数。
// Temperature/MaxTokens 为 nil/0 时使用配置默认值；
// Extra 最后合并进请求体，调用方可借此覆盖任意字段。
type CompletionRequest struct {
	Model          string
	Messages       []Message
	ResponseFormat *ResponseFormat
	Temperature    *float64
	MaxTokens      int
	Extra          map[string]any
}

type Client struct {
	cfg Config
	hc  *http.Client
}

func NewClient(cfg Config, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: timeout}}
}

// Config 返回客户端当前持有的配置（构造后不可变）。
func (c *Client) Config() Config {
	return c.cfg
}

// Complete 发送一次补全请求，返回首个 choice 的文本内容（去除首尾空白）。
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("openrouter: 消息列表不能为空")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.ModelText
	}

	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	body := map[string]any{
		"model":       model,
		"messages":    req.Messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	if req.ResponseFormat != nil {
		body["response_format"] = req.ResponseFormat
	}
	for k, v := range req.Extra {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openrouter: 编码请求体失败: %w", err)
	}

	url := completionsURL(c.cfg.BaseURL)
	logger.Debugf("[ai] 请求: POST %s model=%s messages=%d auth=Bearer ****%s",
		url, model, len(req.Messages), keyTail(c.cfg.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openrouter: 构造请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	// OpenRouter 归因头（可选）
	if c.cfg.SiteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.AppName != "" {
		httpReq.Header.Set("X-Title", c.cfg.AppName)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openrouter: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var eresp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    any    `json:"code"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		msg := strings.TrimSpace(eresp.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("openrouter: status=%d: %s", resp.StatusCode, msg)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("openrouter: 解码响应失败: %w", err)
	}
	// choices 缺失按空输出处理，交由上层的归一化兜底。
	if len(r.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}

// completionsURL 规范化 BaseURL，避免配置中重复携带 /chat/completions。
func completionsURL(base string) string {
	url := strings.TrimSpace(base)
	if url == "" {
		url = defaultBaseURL
	}
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func keyTail(key string) string {
	if len(key) > 4 {
		return key[len(key)-4:]
	}
	return key
}
