package sqldb

import (
	"context"
)

// Client is a configured database connection built by a registered factory.
// It is a Handle itself, so a DAO can run on the client or on a Tx it begins.
type Client interface {
	Init() error
	Close() error
	GetHandle() Handle
	Handle // Methods required for Handle are also required, so, promote it
	GetConf() *Conf
	GetDSN() string
	Ping(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
}
