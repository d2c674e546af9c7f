package domain

import "errors"

var (
	// ErrAnalysisFailed covers estimator transport failures and unusable responses.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrIndexOutOfRange is returned when an item index does not exist.
	ErrIndexOutOfRange = errors.New("item index out of range")
	ErrNotFound        = errors.New("not found")
	ErrEmptyMeal       = errors.New("meal has no items")
	ErrInvalidField    = errors.New("unknown item field")
)
