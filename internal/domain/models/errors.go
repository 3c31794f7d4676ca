package models

import "errors"

var (
	// ErrNotLoaded is returned by operations that need the filter bounds from bootstrap.
	ErrNotLoaded = errors.New("dashboard not loaded")

	// ErrInvalidDateRange means start and end are missing or start is after end.
	ErrInvalidDateRange = errors.New("invalid date range")

	ErrUnknownField = errors.New("unknown field")

	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrFeatureOutOfRange rejects a draft update outside the feature's bounds.
	ErrFeatureOutOfRange = errors.New("feature value out of range")

	// ErrUnresolvedPoint means a chart point carried neither a record nor a valid index.
	ErrUnresolvedPoint = errors.New("chart point does not resolve to a filing")

	// ErrStaleResult is returned when a response lost to a newer request and was dropped.
	ErrStaleResult = errors.New("result superseded by a newer request")
)
