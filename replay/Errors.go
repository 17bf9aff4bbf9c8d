package replay

import "errors"

// BufferError implements errors unique to an experience replay buffer.
type BufferError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *BufferError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BufferError) Unwrap() error {
	return e.Err
}

var errInsufficientSamples = errors.New("fewer stored transitions than " +
	"requested sample size")

// IsInsufficientSamples returns whether or not an error reports that
// the buffer holds fewer transitions than a Sample call requested.
func IsInsufficientSamples(err error) bool {
	return errors.Is(err, errInsufficientSamples)
}
