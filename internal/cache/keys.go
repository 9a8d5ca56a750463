package cache

import "fmt"

func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// RateLimitKey scopes a counter to a principal identifier. Callers pass a
// digest rather than the raw API key.
func RateLimitKey(identifier string) string {
	return fmt.Sprintf("ratelimit:%s", identifier)
}
