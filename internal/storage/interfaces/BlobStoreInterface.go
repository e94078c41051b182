package interfaces

import "context"

// BlobStoreInterface holds exactly one blob. Read returns nil, nil when
// nothing has been written yet. A reader running concurrently with Write
// sees either the old or the new blob, never a mix.
type BlobStoreInterface interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
