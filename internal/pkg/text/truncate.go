package text

import "strings"

func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

// CleanList 去掉空白项并截断到上限。
func CleanList(items []string, max int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
