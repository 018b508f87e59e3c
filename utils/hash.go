package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashEmail 对邮箱做加盐 hash，事件里只携带 hash，不携带明文
func HashEmail(salt, email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(salt + ":" + normalized))

	return hex.EncodeToString(sum[:])
}
