package embate

import "errors"

var (
	ErrDuplicateEmbate = errors.New("embate already exists")
	ErrNotFound        = errors.New("embate not found")
	ErrInvalidStatus   = errors.New("invalid embate status")
)
