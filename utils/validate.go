package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail 只做浏览器 type=email 级别的粗校验
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Initials 取名和姓的首字母大写，都为空时返回 fallback
func Initials(first, last, fallback string) string {
	var b strings.Builder
	for _, part := range []string{first, last} {
		for _, r := range strings.TrimSpace(part) {
			b.WriteRune(r)
			break
		}
	}

	if b.Len() == 0 {
		return fallback
	}
	return strings.ToUpper(b.String())
}
