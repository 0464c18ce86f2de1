package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const bookmarkKeyPrefix = "vocabdrill:bookmark:"

// RedisBookmarks keeps resume positions in Redis.
type RedisBookmarks struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBookmarks connects and pings the server. A zero ttl keeps
// bookmarks forever.
func NewRedisBookmarks(addr, password string, db int, ttl time.Duration) (*RedisBookmarks, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	return &RedisBookmarks{client: client, ttl: ttl}, nil
}

func bookmarkKey(scope string) string {
	return bookmarkKeyPrefix + scope
}

func (r *RedisBookmarks) SaveBookmark(ctx context.Context, b Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bookmark: %w", err)
	}
	if err := r.client.Set(ctx, bookmarkKey(b.Scope), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save bookmark %q: %w", b.Scope, err)
	}
	return nil
}

func (r *RedisBookmarks) Bookmark(ctx context.Context, scope string) (Bookmark, bool, error) {
	data, err := r.client.Get(ctx, bookmarkKey(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Bookmark{}, false, nil
	}
	if err != nil {
		return Bookmark{}, false, fmt.Errorf("load bookmark %q: %w", scope, err)
	}

	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return Bookmark{}, false, fmt.Errorf("decode bookmark %q: %w", scope, err)
	}
	return b, true, nil
}

// Close closes the Redis client.
func (r *RedisBookmarks) Close() error {
	return r.client.Close()
}
