package ton

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrFailedToParse = errors.New("failed to parse response")
)
