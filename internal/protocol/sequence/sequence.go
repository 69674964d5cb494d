// Package sequence allocates date-scoped protocol numbers. Numbers are
// unique per calendar day and contiguous from 1 as long as every allocating
// transaction commits.
package sequence

import (
	"context"
	"time"
)

// Generator allocates the next protocol number for the given time's calendar
// day. Implementations must never hand the same number to two callers, even
// under arbitrary concurrency.
//
// The PostgreSQL implementation participates in the transaction carried by
// ctx (pkg/platform/tx): the allocated number only becomes real when that
// transaction commits, so an aborted dispatch never burns a number.
type Generator interface {
	Next(ctx context.Context, now time.Time) (string, error)
}
