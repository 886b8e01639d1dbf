package services

import (
	"context"
	"database/sql"
)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, so ownership
// lookups can run inside or outside a transaction.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
