package policies

import (
	"context"
	"io"
)

// EmailSender delivers plain-text mail to one recipient.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// PhotoStorage stores an uploaded image and returns its public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (publicURL string, err error)
}
