package service

import (
	"errors"
	"fmt"

	"shelfpulse/internal/features"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrMissingUpload   = errors.New("CSV file is required under 'file' field")
	ErrEmptyUpload     = errors.New("CSV is empty")
	ErrBatchInProgress = errors.New("a batch run is already in progress")
)

// InputError is a client mistake that is not covered by a more specific type.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

// StorageError wraps a database failure. The enclosing transaction has been
// or will be rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	var (
		missing *features.MissingFeatureError
		invalid *features.InvalidFeatureError
		input   *InputError
		filter  *repository.FilterValueError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &invalid) ||
		errors.As(err, &input) ||
		errors.As(err, &filter) ||
		errors.Is(err, ErrMissingUpload) ||
		errors.Is(err, ErrEmptyUpload)
}

// PublicMessage returns the text of err that is safe to show to API clients.
// Client and inference errors are shown verbatim, anything else is replaced
// by generic.
func PublicMessage(err error, generic string) string {
	var inf *inference.InferenceError
	if IsClientError(err) || errors.As(err, &inf) {
		return err.Error()
	}
	return generic
}
