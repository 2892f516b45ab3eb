// Package identity canonicalizes Telegram handles. A handle typed into the
// storefront checkout form is the only link between an external payment and a
// bot user, so every input shape must collapse to the same key.
package identity

import "strings"

// Normalize cleans a raw handle into a comparison key. Accepted shapes:
//
//	"username"            -> "username"
//	"@Username"           -> "username"
//	"https://t.me/User"   -> "user"
//	"t.me/User?start=1/"  -> "user"
//
// Returns "" for empty input.
func Normalize(raw string) string {
	handle := strings.ToLower(strings.TrimSpace(raw))
	if handle == "" {
		return ""
	}

	handle = strings.TrimPrefix(handle, "@")

	// Deep links may embed the handle after t.me/; keep only the suffix
	// after the last occurrence.
	if idx := strings.LastIndex(handle, "t.me/"); idx >= 0 {
		handle = handle[idx+len("t.me/"):]
	}

	if idx := strings.Index(handle, "?"); idx >= 0 {
		handle = handle[:idx]
	}
	handle = strings.TrimRight(handle, "/")

	return handle
}
