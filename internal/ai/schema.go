package ai

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// evidenceSchema 约束证据核验响应的最低形状。校验失败不报错，
// 走保守兜底（未核验 + 通用反馈）。
var evidenceSchema = jsonschema.MustCompileString("evidence.json", `{
	"type": "object",
	"properties": {
		"verified": {"type": "boolean"},
		"feedback": {"type": "string"}
	},
	"required": ["verified", "feedback"]
}`)

func evidenceShapeOK(obj map[string]any) bool {
	raw, err := json.Marshal(obj)
	if err != nil {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return evidenceSchema.Validate(v) == nil
}
