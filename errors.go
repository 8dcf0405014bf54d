package jackpot

import (
	"errors"
	"fmt"
)

var (
	ErrNoFactory      = errors.New("no connection factory configured")
	ErrInvalidFactory = errors.New("invalid factory func settings")
	ErrFactoryFailure = errors.New("factory failed to produce a connection")
	ErrFactoryEmpty   = errors.New("factory produced no connection")
	ErrPoolFull       = errors.New("pool is full and no connection is healthy enough")
	ErrConnClosed     = errors.New("connection closed before becoming usable")
	ErrBackoffSetting = errors.New("invalid retry backoff settings")
)

// errFactoryDeclined marks a synchronous factory returning nil, which is
// not an error: allocation falls back to the best existing candidate.
var errFactoryDeclined = errors.New("factory declined")

// wrapSentinel keeps both the matchable kind and the underlying cause:
// errors.Is(err, sentinel) holds and the cause stays in the message.
func wrapSentinel(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}
