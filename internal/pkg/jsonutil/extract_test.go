package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceObjectNeverFails(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"纯 JSON", `{"a": 1}`, map[string]any{"a": float64(1)}},
		{"散文包裹", `Sure! Here you go: {"tips":["x"]} hope it helps`, map[string]any{"tips": []any{"x"}}},
		{"markdown 围栏", "```json\n{\"b\": true}\n```", map[string]any{"b": true}},
		{"无语言标记围栏", "```\n{\"c\": \"v\"}\n```", map[string]any{"c": "v"}},
		{"嵌套对象", `noise {"outer":{"inner":2}} tail`, map[string]any{"outer": map[string]any{"inner": float64(2)}}},
		{"字符串内花括号", `{"s": "a { b } c"}`, map[string]any{"s": "a { b } c"}},
		{"转义引号", `{"s": "he said \"hi\""}`, map[string]any{"s": `he said "hi"`}},
		{"空输入", "", map[string]any{}},
		{"纯空白", "   \n\t ", map[string]any{}},
		{"无 JSON", "the model just rambled", map[string]any{}},
		{"顶层是数组", `[1,2,3]`, map[string]any{}},
		{"顶层是字符串", `"hello"`, map[string]any{}},
		{"截断的对象", `{"a": 1,`, map[string]any{}},
		{"非法 JSON", `{a: 1}`, map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CoerceObject(tc.raw))
		})
	}
}

func TestExtractObjectBalancesBraces(t *testing.T) {
	got, ok := ExtractObject(`prefix {"a":{"b":"}"}} suffix {"другой":1}`)
	assert.True(t, ok)
	assert.Equal(t, `{"a":{"b":"}"}}`, got)

	_, ok = ExtractObject("no braces here")
	assert.False(t, ok)
}
