package hostapi

import (
	"context"
	"encoding/json"
	"time"
)

// Iterator is a host-side iterator a guest advances with "next".
// Iterators live in the Set, not the guest, so they need explicit Close.
type Iterator interface {
	// Next returns the next chunk and whether more chunks follow
	Next(ctx context.Context) (json.RawMessage, bool, error)
	// Close releases the iterator
	Close() error
}

type iteratorInfo struct {
	iterator  Iterator
	apiName   string
	method    string
	owner     string
	createdAt time.Time
	lastUsed  time.Time
	// busy is set while Next runs outside the set's lock
	busy bool
}
