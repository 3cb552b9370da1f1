package ai

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// 中文说明：
// 模型返回的 JSON 形状不可信：键可能缺失、列表里可能混入数字或对象。
// 这里统一做“先清洗、后截断”的归一化，保证能力函数输出形状恒定。

// stringList 从对象里取一个字符串列表：非字符串项与空白项丢弃，
// 清洗完成后再按 max 截断。
func stringList(obj map[string]any, key string, max int) []string {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	items := gjson.GetBytes(raw, key)
	if !items.IsArray() {
		return nil
	}
	var out []string
	items.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			return true
		}
		s := strings.TrimSpace(v.String())
		if s == "" {
			return true
		}
		out = append(out, s)
		return true
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// stringField 取字符串字段，非字符串一律视为空。
func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// boolField 取布尔字段，缺失或类型不符返回 fallback。
func boolField(obj map[string]any, key string, fallback bool) bool {
	if v, ok := obj[key].(bool); ok {
		return v
	}
	return fallback
}
