package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps a mock rueidis client. batchSize <= 0 selects the default.
func NewStoreForTest(c rueidis.Client, batchSize int) *Store {
	return newStore(c, batchSize, 0)
}
