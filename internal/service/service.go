// Package service holds the member API business logic.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
