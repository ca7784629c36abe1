// Package storage is the persistence layer: a key/value store holding
// JSON documents under a small set of well-known keys.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

const (
	KeyBooks       = "books"
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyHistories   = "allBorrowingHistories"
)

var ErrNoKey = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
