package resumes

import "errors"

var (
	ErrNotFound = errors.New("resume not found")
	ErrInvalid  = errors.New("invalid resume record")
)
