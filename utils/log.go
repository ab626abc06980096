package utils

import (
	"strings"
	"unicode"
)

// SanitizeLogMessage 清理来自磁盘或外部输入的日志内容，防止日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogIdentifier 截断并清理标识符类日志内容
func SanitizeLogIdentifier(identifier string) string {
	if len(identifier) > 64 {
		identifier = identifier[:64] + "..."
	}
	return SanitizeLogMessage(identifier)
}
