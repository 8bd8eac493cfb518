package storage

import "errors"

// ErrNotFound indicates a requested row does not exist.
var ErrNotFound = errors.New("storage: record not found")

type scanner interface {
	Scan(dest ...any) error
}
