package model

import "github.com/m-mizutani/goerr/v2"

var (
	// Validation failures, reported as 400 responses.
	ErrInvalidAction    = goerr.New("invalid action")
	ErrDataRequired     = goerr.New("data is required")
	ErrRowIndexRequired = goerr.New("rowIndex is required")

	// ErrCollectionNotFound means the named collection does not exist in
	// the backing service.
	ErrCollectionNotFound = goerr.New("collection not found")

	// ErrRowNotFound means no row exists at the addressed index at the
	// time the service was consulted.
	ErrRowNotFound = goerr.New("row not found")
)
