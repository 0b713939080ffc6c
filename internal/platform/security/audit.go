package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AuditHash resume IP e user agent num valor opaco gravado junto ao voto.
func AuditHash(salt, ip, userAgent string) string {
	ip = strings.TrimSpace(ip)
	userAgent = strings.TrimSpace(userAgent)
	if ip == "" && userAgent == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
