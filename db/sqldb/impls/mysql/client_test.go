package mysql

import (
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

func TestDSN(t *testing.T) {
	dsn, err := DSN(&sqldb.Conf{Host: "db", User: "app", PW: "secret", DB: "main"})
	require.NoError(t, err)

	cfg, err := driver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "main", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.MultiStatements)
	assert.Equal(t, time.UTC, cfg.Loc)
	assert.Contains(t, cfg.Params["sql_mode"], "ANSI_QUOTES")
}

func TestDSNOverrideAndBadZone(t *testing.T) {
	dsn, err := DSN(&sqldb.Conf{DSN: "u:p@/x"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@/x", dsn)

	_, err = DSN(&sqldb.Conf{Host: "db", TZ: "Nowhere/Atlantis"})
	assert.Error(t, err)
}
