package sqldb

import (
	"context"
	"errors"
)

// Tx is a Handle bound to one transaction.
// Anything that runs on a Handle (executors, DAOs) runs inside the transaction when given a Tx.
type Tx interface {
	Handle
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// InTx runs fn inside a transaction begun on c.
// The transaction is committed when fn returns nil and rolled back otherwise.
func InTx(ctx context.Context, c Client, fn func(tx Tx) error) error {
	tx, err := c.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
