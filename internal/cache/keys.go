package cache

import "fmt"

// DescriptionKey addresses a cached image description by model and the
// SHA-256 of the image bytes, so a renamed file still hits.
func DescriptionKey(model, contentHash string) string {
	return fmt.Sprintf("desc:%s:%s", model, contentHash)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
