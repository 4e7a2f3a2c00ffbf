package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${name} 替换为 vars 中的值。
// 名称不存在时保留原占位符。
func Interpolate(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name := strings.TrimSpace(groups[1])
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}
