package database

import "context"

// Transactor runs fn as one unit of work. The transaction travels in the ctx
// handed to fn; nested calls join the outer unit instead of opening a new one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
