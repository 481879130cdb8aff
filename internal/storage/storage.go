package storage

import (
	"context"
	"io"
	"strconv"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

// AudioObjectName is where the audio of one attempt is archived.
func AudioObjectName(sessionID string, attempt int) string {
	return "audio/" + sessionID + "/" + strconv.Itoa(attempt) + ".webm"
}
