// Package keyValueDb abstracts the ordered key-value store the state layer
// persists into. Backends implement DB; callers pick one through a Manager.
package keyValueDb

import (
	"context"
)

// DB defines the operations any keyValueDb implementation must support.
// Keys iterate in byte order; range bounds are [start, end) with a nil bound
// meaning unbounded on that side.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies ops atomically.
	Batch(ctx context.Context, ops []BatchOperation) error
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator allows traversing over keyValueDb entries. Key and Value stay
// valid after the next call to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// PrefixEnd returns the smallest key greater than every key with the given
// prefix, for use as an exclusive iterator bound. A nil return means the
// prefix is all 0xff bytes and the scan is unbounded above.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
