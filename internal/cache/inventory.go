package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	ArticleKeyPrefix   = "article:%d"
	SearchKeyPrefix    = "search:%s:%d:%d"
	DashboardKeyPrefix = "dashboard"
)

const (
	UserTTL      = 5 * time.Minute
	ArticleTTL   = 10 * time.Minute
	SearchTTL    = 1 * time.Minute
	DashboardTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ArticleKey(articleID uint) string {
	return fmt.Sprintf(ArticleKeyPrefix, articleID)
}

func SearchKey(query string, skip, take int) string {
	return fmt.Sprintf(SearchKeyPrefix, query, skip, take)
}

func DashboardKey() string {
	return DashboardKeyPrefix
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateArticle drops the cached article along with the dashboard
// aggregates that include it. Search pages expire on their own short TTL.
func InvalidateArticle(ctx context.Context, articleID uint) {
	Invalidate(ctx, ArticleKey(articleID))
	Invalidate(ctx, DashboardKey())
}

// Aside is a cache-aside helper: it fills dest from the cached value for key
// when present, otherwise it calls load, stores dest with the given TTL, and
// returns load's error. A nil or unreachable Redis client degrades to load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Result()
		if err == nil {
			if unmarshalErr := json.Unmarshal([]byte(raw), dest); unmarshalErr == nil {
				return nil
			}
			// Corrupt entry: drop it and fall through to load.
			client.Del(ctx, key)
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, marshalErr := json.Marshal(dest); marshalErr == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
