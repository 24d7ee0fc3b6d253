package storage

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by backends used before Init or Load.
var ErrNotInitialized = errors.New("storage not initialized")

// Provider is the persistent key-value store behind alarms, barcodes and
// settings. Reads of a missing key report found=false rather than an error.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Key-value
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Apply writes every operation in the batch or none of them.
	Apply(ctx context.Context, b *Batch) error
	// Keys returns the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Utils
	GetConfigPath() string
}

type OpKind int

const (
	OpSet OpKind = iota
	OpRemove
)

// Op is a single write inside a Batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// Batch collects writes to be applied atomically.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(key string, value []byte) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Key: key, Value: value})
	return b
}

func (b *Batch) Remove(key string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpRemove, Key: key})
	return b
}

func (b *Batch) Ops() []Op {
	if b == nil {
		return nil
	}
	return b.ops
}

func (b *Batch) Len() int {
	return len(b.Ops())
}
