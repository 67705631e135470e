// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jcodagnone/lugares/dbscan"
	"github.com/jcodagnone/lugares/store"
)

// ErrorType classifies the errors returned by the service.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidParams clustering parameters out of range.
	ErrorTypeInvalidParams
	// ErrorTypeInvalidLocation a fix with impossible coordinates or accuracy.
	ErrorTypeInvalidLocation
	// ErrorTypeNotFound a location or run that does not exist.
	ErrorTypeNotFound
	// ErrorTypeStorage the database failed.
	ErrorTypeStorage
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeInvalidParams:
		return "invalid_params"
	case ErrorTypeInvalidLocation:
		return "invalid_location"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is returned by every Service operation that can fail.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, err error, format string, args ...any) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// storageError classifies err coming from the repository.
func storageError(err error, format string, args ...any) *Error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrorTypeNotFound, err, format, args...)
	}

	return newError(ErrorTypeStorage, err, format, args...)
}

func errorType(err error) ErrorType {
	var placesErr *Error
	if errors.As(err, &placesErr) {
		return placesErr.Type
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrorTypeNotFound
	case dbscan.IsConfigError(err):
		return ErrorTypeInvalidParams
	default:
		return ErrorTypeUnknown
	}
}

// IsInvalidParamsError reports whether err was caused by bad clustering parameters.
func IsInvalidParamsError(err error) bool {
	return errorType(err) == ErrorTypeInvalidParams
}

// IsInvalidLocationError reports whether err was caused by a rejected fix.
func IsInvalidLocationError(err error) bool {
	return errorType(err) == ErrorTypeInvalidLocation
}

// IsNotFoundError reports whether err refers to a missing location or run.
func IsNotFoundError(err error) bool {
	return errorType(err) == ErrorTypeNotFound
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch errorType(err) {
	case ErrorTypeInvalidParams, ErrorTypeInvalidLocation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
