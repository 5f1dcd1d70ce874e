package blobstore

import (
	"context"
	"errors"
	"io"
)

type PutResult struct {
	URL      string
	Pathname string
}

// Store keeps uploaded files (withdrawal receipts) in an external blob
// service. Upload failures surface to the caller; they are not best-effort.
type Store interface {
	Put(ctx context.Context, path string, r io.Reader) (PutResult, error)
	Delete(ctx context.Context, pathname string) error
}

// Disabled is used when no blob credentials are configured; every call fails.
type Disabled struct{}

func (Disabled) Put(ctx context.Context, path string, r io.Reader) (PutResult, error) {
	return PutResult{}, errors.New("blob store is not configured")
}

func (Disabled) Delete(ctx context.Context, pathname string) error {
	return errors.New("blob store is not configured")
}
