package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidQuery = errors.New("invalid query")
	ErrEmbedding    = errors.New("embedding failed")
	ErrGeneration   = errors.New("generation failed")
	ErrHydration    = errors.New("hydration failed")
	ErrFormatting   = errors.New("formatting failed")
	ErrInternal     = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidQuery(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}
