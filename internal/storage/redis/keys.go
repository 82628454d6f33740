package redis

import "fmt"

// matchKey returns the Redis key holding the match document
func matchKey(prefix string) string {
	return fmt.Sprintf("%s:match", prefix)
}

// externalCounterKey returns the Redis key for the external registration counter
func externalCounterKey(prefix string) string {
	return fmt.Sprintf("%s:external_counter", prefix)
}
