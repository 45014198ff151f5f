package db

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexExists signals that the FT index already exists.
	ErrIndexExists = errors.New("index already exists")
	// ErrIndexNotFound signals a missing FT index.
	ErrIndexNotFound = errors.New("index not found")
)

// Op identifies the failed storage operation.
type Op string

const (
	OpHSet        Op = "hset"
	OpHGetAll     Op = "hgetall"
	OpDel         Op = "del"
	OpExists      Op = "exists"
	OpCreateIndex Op = "create_index"
	OpDropIndex   Op = "drop_index"
	OpIndexInfo   Op = "index_info"
	OpSearch      Op = "search"
)

// Error wraps a backend error with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
