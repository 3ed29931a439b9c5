// Package pgsql runs the mapper on PostgreSQL through a pgx pool.
package pgsql

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeptools/gw-mapper/db/sqldb"
)

const DBType = sqldb.TypePgSQL

const (
	defaultPort     = 5432
	defaultMaxConns = 10
	defaultMinConns = 2
	connLifetime    = 3 * time.Minute
	initTimeout     = 5 * time.Second
)

func init() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

type Client struct {
	Handle // [Embedded] for Promoted Methods
	Conf   *sqldb.Conf
	dsn    string
}

var _ sqldb.Client = (*Client)(nil)

// DSN renders conf as a postgres:// URL. conf.DSN wins when set.
// sslmode is disabled unless the DSN says otherwise.
func DSN(conf *sqldb.Conf) string {
	if conf.DSN != "" {
		return conf.DSN
	}
	port := conf.Port
	if port == 0 {
		port = defaultPort
	}
	tz := conf.TZ
	if tz == "" {
		tz = "UTC"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.PW),
		Host:     net.JoinHostPort(conf.Host, strconv.Itoa(port)),
		Path:     "/" + conf.DB,
		RawQuery: url.Values{"sslmode": {"disable"}, "timezone": {tz}}.Encode(),
	}
	return u.String()
}

func (c *Client) Init() error {
	c.dsn = DSN(c.Conf)
	cfg, err := pgxpool.ParseConfig(c.dsn)
	if err != nil {
		return fmt.Errorf("pgsql: parse config: %w", err)
	}
	cfg.MaxConns = defaultMaxConns
	if c.Conf.MaxOpenConns > 0 {
		cfg.MaxConns = int32(c.Conf.MaxOpenConns)
	}
	cfg.MinConns = min(defaultMinConns, cfg.MaxConns)
	if c.Conf.MaxIdleConns > 0 {
		cfg.MinConns = min(int32(c.Conf.MaxIdleConns), cfg.MaxConns)
	}
	cfg.MaxConnLifetime = connLifetime

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if c.Pool, err = pgxpool.NewWithConfig(ctx, cfg); err != nil {
		return fmt.Errorf("pgsql: open pool: %w", err)
	}
	if err = c.Pool.Ping(ctx); err != nil {
		c.Pool.Close()
		c.Pool = nil
		return fmt.Errorf("pgsql: ping %s: %w", cfg.ConnConfig.Host, err)
	}
	log.Printf("[INFO][SQLDB] pgsql %s/%s ready (max conns %d)", cfg.ConnConfig.Host, cfg.ConnConfig.Database, cfg.MaxConns)
	return nil
}

func (c *Client) GetHandle() sqldb.Handle {
	return &c.Handle
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) GetDSN() string {
	return c.dsn
}

func (c *Client) Close() error {
	if c.Pool == nil {
		return nil
	}
	c.Pool.Close()
	log.Println("[INFO][SQLDB] pgsql pool closed")
	return nil
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	if c.Pool == nil {
		return nil, fmt.Errorf("pgsql: client not initialized")
	}
	tx, err := c.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pgsql: begin: %w", err)
	}
	return &Tx{tx: tx}, nil
}
