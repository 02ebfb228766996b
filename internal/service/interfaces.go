package service

import (
	"context"
	"io"
)

// VerificationNotifier delivers the email verification code to a new
// account. Implementations must not block registration on delivery
// failures beyond returning the error.
type VerificationNotifier interface {
	SendVerificationCode(ctx context.Context, to, username, code string) error
}

// ObjectStorage persists user-uploaded binary content and returns a
// public URL for it. Implementations decide the content type from the
// payload bytes, not from caller metadata.
type ObjectStorage interface {
	UploadAvatar(ctx context.Context, userID string, body io.Reader, size int64) (string, error)
}
