package provider

import "encoding/json"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ContentPart 多模态消息片段（text 或 image_url）。
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Message 单条聊天消息。Parts 非空时按多模态编码，否则按纯文本编码。
// 消息顺序即发送给模型的字面提示词顺序。
type Message struct {
	Role    string
	Content string
	Parts   []ContentPart
}

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Parts) > 0 {
		return json.Marshal(struct {
			Role    string        `json:"role"`
			Content []ContentPart `json:"content"`
		}{Role: m.Role, Content: m.Parts})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: m.Role, Content: m.Content})
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// UserImageMessage 文本 + 图片引用，供视觉模型使用。
func UserImageMessage(text, imageDataURL string) Message {
	return Message{
		Role: RoleUser,
		Parts: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURL}},
		},
	}
}

// ResponseFormat 结构化输出提示（{"type":"json_object"}）。
type ResponseFormat struct {
	Type string `json:"type"`
}

// JSONObjectFormat 请求模型将响应约束为单个 JSON 对象。
func JSONObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}
