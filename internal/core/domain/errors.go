package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPages is the only fatal audit condition: the extractor produced
	// no pages at all.
	ErrNoPages      = errors.New("document has no pages")
	ErrInvalidInput = errors.New("invalid input")
	ErrRunNotFound  = errors.New("audit run not found")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
