package pubsub

import "errors"

// ErrClosed is returned when the bus has been closed.
var ErrClosed = errors.New("pubsub closed")
