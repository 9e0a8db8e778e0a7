package script

import "errors"

var (
	// ErrClosed is returned when running a script on a closed host.
	ErrClosed = errors.New("script host is closed")

	// ErrNotPollable is raised in a script that polls without a poll function.
	ErrNotPollable = errors.New("polling is not available")
)
