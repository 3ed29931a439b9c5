// Package mysql runs the mapper on MySQL through database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/db/sqldb/impls/stdsql"
)

const DBType = sqldb.TypeMySQL

func init() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

type Client struct {
	stdsql.Handle // [Embedded] for Promoted Methods
	Conf          *sqldb.Conf
	dsn           string
}

var _ sqldb.Client = (*Client)(nil)

// DSN renders conf with the driver's own Config. conf.DSN wins when set.
// ANSI_QUOTES lets generated SQL quote identifiers either way.
func DSN(conf *sqldb.Conf) (string, error) {
	if conf.DSN != "" {
		return conf.DSN, nil
	}
	tz := conf.TZ
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("mysql: tz %q: %w", tz, err)
	}
	port := conf.Port
	if port == 0 {
		port = 3306
	}
	cfg := driver.NewConfig()
	cfg.User = conf.User
	cfg.Passwd = conf.PW
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conf.Host, strconv.Itoa(port))
	cfg.DBName = conf.DB
	cfg.ParseTime = true
	cfg.Loc = loc
	cfg.MultiStatements = true
	cfg.Params = map[string]string{"sql_mode": "'ANSI_QUOTES'"}
	return cfg.FormatDSN(), nil
}

func (c *Client) Init() error {
	dsn, err := DSN(c.Conf)
	if err != nil {
		return err
	}
	c.dsn = dsn
	c.Type = DBType
	if c.DB, err = sql.Open("mysql", c.dsn); err != nil {
		return err
	}
	c.DB.SetConnMaxLifetime(3 * time.Minute)
	c.DB.SetMaxOpenConns(orDefault(c.Conf.MaxOpenConns, 10))
	c.DB.SetMaxIdleConns(orDefault(c.Conf.MaxIdleConns, 10))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("mysql: ping: %w", err)
	}
	log.Printf("[INFO][SQLDB] mysql %s/%s ready", c.Conf.Host, c.Conf.DB)
	return nil
}

func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		return err
	}
	log.Println("[INFO][SQLDB] mysql client closed")
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

func orDefault(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
