package service

import (
	"errors"
	"fmt"
)

// Error taxonomy for the generation pipeline. Transport and payload
// failures abort the whole operation; image sub-pipeline failures are
// absorbed by the caller.
var (
	// ErrInvalidResponse means the transport response was malformed.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrEmptyContent means the completion carried no message body.
	ErrEmptyContent = errors.New("empty content")
	// ErrEncoding means the returned text is not valid byte data.
	ErrEncoding = errors.New("encoding error")
	// ErrDecoding means the payload did not parse as the expected JSON
	// shape or failed validation. Field-level detail is logged, not
	// returned: the only recovery available to the caller is a re-prompt.
	ErrDecoding = errors.New("decoding error")
	// ErrMissingData means the image response carried no inline payload.
	ErrMissingData = errors.New("missing image data")
	// ErrUnknown covers any other non-success condition.
	ErrUnknown = errors.New("unknown error")
)

// BadStatusError reports a non-success HTTP status from an upstream API.
type BadStatusError struct {
	Code int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("bad status code %d", e.Code)
}
