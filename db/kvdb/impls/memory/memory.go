// Package memory is an in-process kvdb.Client backed by a bounded LRU.
package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeptools/gw-mapper/db/kvdb"
)

const KVType = "memory"

const defaultSize = 4096

func init() {
	kvdb.RegisterFactory(KVType, func(conf *kvdb.Conf) (kvdb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

type entry struct {
	val     string
	expires time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type Client struct {
	Conf *kvdb.Conf

	cache *lru.Cache[string, entry]
	now   func() time.Time
}

// Ensure memory.Client implements kvdb.Client interface
var _ kvdb.Client = (*Client)(nil)

// New returns an initialized client holding at most size entries
func New(size int) *Client {
	c := &Client{Conf: &kvdb.Conf{Type: KVType, Size: size}}
	if err := c.Init(); err != nil {
		panic(err) // only fails on a non-positive size, which Init replaces
	}
	return c
}

func (c *Client) Init() error {
	size := defaultSize
	if c.Conf != nil && c.Conf.Size > 0 {
		size = c.Conf.Size
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return fmt.Errorf("memory kvdb: %w", err)
	}
	c.cache = cache
	if c.now == nil {
		c.now = time.Now
	}
	log.Printf("[INFO] memory kvdb initialized (size=%d)", size)
	return nil
}

func (c *Client) Close() error {
	if c.cache != nil {
		c.cache.Purge()
	}
	return nil
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

func (c *Client) lookup(key string) (entry, bool) {
	e, ok := c.cache.Get(key)
	if !ok {
		return entry{}, false
	}
	if e.expired(c.now()) {
		c.cache.Remove(key)
		return entry{}, false
	}
	return e, true
}

func (c *Client) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}

func (c *Client) Delete(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := c.lookup(k); ok {
			c.cache.Remove(k)
			n++
		}
	}
	return n, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	e, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	e.expires = c.deadline(expiration)
	c.cache.Add(key, e)
	return true, nil
}

func (c *Client) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := c.lookup(key)
	if !ok {
		return "", false, nil
	}
	return e.val, true, nil
}

func (c *Client) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	c.cache.Add(key, entry{val: fmt.Sprint(value), expires: c.deadline(expiration)})
	return nil
}

func (c *Client) deadline(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return c.now().Add(expiration)
}
