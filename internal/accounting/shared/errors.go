package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("accounting: not found")
	// ErrUnbalanced indicates total debits differ from total credits.
	// It signals a posting-rule or configuration defect, never user input.
	ErrUnbalanced = errors.New("accounting: entry lines must balance")
	// ErrTooFewLines indicates an entry set with less than two lines.
	ErrTooFewLines = errors.New("accounting: entry requires at least two lines")
	// ErrAccountUnavailable indicates an inactive or non-postable account.
	ErrAccountUnavailable = errors.New("accounting: account inactive or not postable")
	// ErrInvalidAmount indicates a negative, double-sided, or over-scaled line amount.
	ErrInvalidAmount = errors.New("accounting: invalid line amount")
	// ErrInvalidRange indicates a malformed report date range.
	ErrInvalidRange = errors.New("accounting: invalid date range")
)
