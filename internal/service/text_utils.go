package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// truncate 最多保留 n 字节，不截断多字节字符
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func toLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// toText 把响应里的任意 JSON 值转成可解析的文本：字符串原样，字符串数组按行拼接，其余序列化
func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		lines := make([]string, 0, len(t))
		for _, it := range t {
			lines = append(lines, toText(it))
		}
		return strings.Join(lines, "\n")
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
