package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/costplan/backend/internal/model"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownBusiness = errors.New("unknown business")

	ErrNotFound       = model.ErrNotFound
	ErrRecordNotFound = model.ErrRecordNotFound
	ErrChangeNotFound = model.ErrChangeNotFound
	ErrInvalidYear    = model.ErrInvalidYear
	ErrMissingRate    = model.ErrMissingRate
)

// ValidationError lists the offending fields of a request, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func unknownBusiness(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownBusiness, key)
}

// catalogError keeps not-found errors and reports the rest as bad input.
func catalogError(err error) error {
	if err == nil || errors.Is(err, model.ErrNotFound) {
		return err
	}
	return invalid(err)
}
