package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is the base error for lookups that miss.
var ErrNotFound = errors.New("not found")

var (
	ErrRecordNotFound = fmt.Errorf("record %w", ErrNotFound)
	ErrChangeNotFound = fmt.Errorf("change %w", ErrNotFound)

	// ErrMissingRate is returned when a business has no rate for a location or implementation type.
	ErrMissingRate = errors.New("missing rate assumption")

	// ErrInvalidYear is returned for implementation years outside 1..Horizon.
	ErrInvalidYear = errors.New("implementation year out of range")
)
