package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // side-effect
	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/db/sqldb/impls/stdsql"
)

const DBType = sqldb.TypeSQLite

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

// Ensure sqlite.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

func (c *Client) Init() error {
	var err error
	switch {
	case c.Conf.DSN != "":
		c.dsn = c.Conf.DSN
	case c.Conf.DB == "" || c.Conf.DB == ":memory:":
		// shared cache keeps one in-memory db across pooled connections
		c.dsn = "file::memory:?cache=shared"
	default:
		c.dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Conf.DB)
	}
	c.Type = DBType
	if c.DB, err = sql.Open("sqlite3", c.dsn); err != nil {
		return err
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	c.DB.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	log.Printf("[INFO][SQLDB] sqlite %s ready", c.dsn)
	return nil
}

func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	log.Println("[INFO][SQLDB] closing sqlite client")
	return c.DB.Close()
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
