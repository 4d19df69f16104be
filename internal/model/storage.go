package model

import (
	"context"
	"io"
)

// ReceiptStorage archives submission receipts in object storage.
type ReceiptStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
}
