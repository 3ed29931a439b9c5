package mapper

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/zeptools/gw-mapper/db/kvdb"
)

const countKeyPrefix = "gwm:count:"

// CountCache keeps page counts in a kvdb store for ttl. Store errors are
// logged and treated as misses.
type CountCache struct {
	kv  kvdb.Client
	ttl time.Duration
}

func NewCountCache(kv kvdb.Client, ttl time.Duration) *CountCache {
	return &CountCache{kv: kv, ttl: ttl}
}

// Key hashes the count SQL together with its parameters in key order.
func (c *CountCache) Key(countSQL string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(countSQL)
	for _, k := range keys {
		fmt.Fprintf(&b, "\x00%s=%#v", k, params[k])
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return countKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CountCache) Get(ctx context.Context, countSQL string, params map[string]any) (int64, bool) {
	key := c.Key(countSQL, params)
	v, found, err := c.kv.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN][MAPPER] count cache get %s: %v", key, err)
		return 0, false
	}
	if !found {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("[WARN][MAPPER] count cache value %q: %v", v, err)
		return 0, false
	}
	return n, true
}

func (c *CountCache) Set(ctx context.Context, countSQL string, params map[string]any, n int64) {
	key := c.Key(countSQL, params)
	if err := c.kv.Set(ctx, key, strconv.FormatInt(n, 10), c.ttl); err != nil {
		log.Printf("[WARN][MAPPER] count cache set %s: %v", key, err)
	}
}

// Forget drops the cached count for countSQL and params.
func (c *CountCache) Forget(ctx context.Context, countSQL string, params map[string]any) error {
	_, err := c.kv.Delete(ctx, c.Key(countSQL, params))
	return err
}
