// Package redis backs the page-count cache with a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zeptools/gw-mapper/db/kvdb"
)

const KVType = "redis"

const pingTimeout = 3 * time.Second

func init() {
	kvdb.RegisterFactory(KVType, func(conf *kvdb.Conf) (kvdb.Client, error) {
		if conf.Host == "" {
			return nil, fmt.Errorf("redis: host is required")
		}
		return &Client{Conf: conf}, nil
	})
}

type Client struct {
	Conf *kvdb.Conf
	rdb  *goredis.Client
}

var _ kvdb.Client = (*Client)(nil)

// Init connects and pings once. The count cache tolerates a missing server,
// so a failed ping is logged rather than returned.
func (c *Client) Init() error {
	port := c.Conf.Port
	if port == 0 {
		port = 6379
	}
	c.rdb = goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(c.Conf.Host, strconv.Itoa(port)),
		Password: c.Conf.PW,
		DB:       c.Conf.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN][KVDB] redis %s unreachable: %v", c.rdb.Options().Addr, err)
		return nil
	}
	log.Printf("[INFO][KVDB] redis %s ready", c.rdb.Options().Addr)
	return nil
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.rdb.Del(ctx, keys...).Result()
}

// Expire reports false when the key does not exist.
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return c.rdb.Expire(ctx, key, expiration).Result()
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}
