package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Stats holds the running cache counters. A single Stats is constructed at
// startup and injected into the Cache; the counters are also registered with
// the default metrics set so /metrics exposes them.
type Stats struct {
	GetHit  *metrics.Counter
	GetMiss *metrics.Counter
	GetErr  *metrics.Counter
	SetOK   *metrics.Counter
	SetErr  *metrics.Counter
	DelOK   *metrics.Counter
	DelErr  *metrics.Counter
}

func NewStats() *Stats {
	return &Stats{
		GetHit:  metrics.NewCounter(`cache_get_total{result="hit"}`),
		GetMiss: metrics.NewCounter(`cache_get_total{result="miss"}`),
		GetErr:  metrics.NewCounter(`cache_get_total{result="error"}`),
		SetOK:   metrics.NewCounter(`cache_set_total{result="ok"}`),
		SetErr:  metrics.NewCounter(`cache_set_total{result="error"}`),
		DelOK:   metrics.NewCounter(`cache_del_total{result="ok"}`),
		DelErr:  metrics.NewCounter(`cache_del_total{result="error"}`),
	}
}

// Cache is a best-effort JSON cache over Redis. Failures are logged and
// counted, never returned to callers: the stores behind it are always the
// source of truth, so a broken cache only costs a recompute.
type Cache struct {
	rdb   *redis.Client
	log   *logrus.Logger
	stats *Stats
}

func New(rdb *redis.Client, log *logrus.Logger, stats *Stats) *Cache {
	return &Cache{rdb: rdb, log: log, stats: stats}
}

// GetJSON reads key into dest. Returns false on miss, deserialization error
// or connection error; all of those are treated as a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.GetMiss.Inc()
			return false
		}
		c.stats.GetErr.Inc()
		c.log.Warnf("redis GET error for %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.stats.GetErr.Inc()
		c.log.Warnf("redis GET decode error for %s: %v", key, err)
		return false
	}
	c.stats.GetHit.Inc()
	return true
}

// SetJSON serializes value under key. ttl <= 0 stores without expiry.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		c.stats.SetErr.Inc()
		c.log.Warnf("redis SET encode error for %s: %v", key, err)
		return false
	}
	if ttl <= 0 {
		err = c.rdb.Set(ctx, key, raw, 0).Err()
	} else {
		err = c.rdb.Set(ctx, key, raw, ttl).Err()
	}
	if err != nil {
		c.stats.SetErr.Inc()
		c.log.Warnf("redis SET error for %s: %v", key, err)
		return false
	}
	c.stats.SetOK.Inc()
	return true
}

func (c *Cache) Del(ctx context.Context, key string) bool {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.stats.DelErr.Inc()
		c.log.Warnf("redis DEL error for %s: %v", key, err)
		return false
	}
	c.stats.DelOK.Inc()
	return true
}

// DeletePattern scans for keys matching a glob pattern and deletes them in
// one bulk DEL. Used for coarse invalidation of a whole key family.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.stats.DelErr.Inc()
		c.log.Warnf("redis SCAN error for pattern %s: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.stats.DelErr.Inc()
		c.log.Warnf("redis DEL error for pattern %s: %v", pattern, err)
		return
	}
	c.stats.DelOK.Inc()
}

// StartReporter logs a compact counter summary every interval until ctx is
// cancelled.
func (c *Cache) StartReporter(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s := c.stats
				c.log.Infof("cache metrics | GET hit=%d miss=%d err=%d | SET ok=%d err=%d | DEL ok=%d err=%d",
					s.GetHit.Get(), s.GetMiss.Get(), s.GetErr.Get(),
					s.SetOK.Get(), s.SetErr.Get(),
					s.DelOK.Get(), s.DelErr.Get())
			}
		}
	}()
}
