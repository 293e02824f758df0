package ingest

import "errors"

var (
	// ErrInvalidPayload is returned for messages that are not the expected JSON.
	ErrInvalidPayload = errors.New("ingest: invalid payload")

	// ErrInvalidImage is returned when a camera frame is not valid base64.
	ErrInvalidImage = errors.New("ingest: invalid camera image")
)
