package jackpot

import "context"

// Allocator is the caller-facing surface of the pool.
type Allocator interface {
	Allocate(ctx context.Context) (Conn, error)
	Pull(ctx context.Context) (Conn, error)
	Release(conn Conn, hard bool) bool
	Free(keep int, hard bool)
	End(hard bool)
	Len() int
}

var _ Allocator = (*Pool)(nil)
