package domain

import "errors"

var (
	ErrMissingToken        = errors.New("TELEGRAM_TOKEN is required")
	ErrSourceNotConfigured = errors.New("file source has no url")
	ErrUnsupportedScheme   = errors.New("unsupported url scheme")
	ErrBadStatus           = errors.New("unexpected response status")
	ErrTooLarge            = errors.New("file exceeds upload limit")
	ErrQueueFull           = errors.New("worker queue full")
	ErrInvalidArgument     = errors.New("invalid argument")
)
