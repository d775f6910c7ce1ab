package service

import "errors"

// Export errors, mapped to HTTP status codes by the delivery layer.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPDFDisabled       = errors.New("pdf export is not enabled")
	ErrNoPublisher       = errors.New("no report publisher configured")
)
