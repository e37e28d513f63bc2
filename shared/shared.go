package shared

import (
	"strings"
)

const cacheKeySeparator = ":"

// BuildCacheKey joins parts into a namespaced cache key, skipping empty parts.
func BuildCacheKey(prefix string, parts ...string) string {
	key := make([]string, 0, len(parts)+1)
	key = append(key, prefix)

	for _, part := range parts {
		if part == "" {
			continue
		}

		key = append(key, strings.ReplaceAll(part, cacheKeySeparator, "_"))
	}

	return strings.Join(key, cacheKeySeparator)
}
