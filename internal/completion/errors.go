package completion

import "errors"

var errEmptyChoices = errors.New("no choices in response")

// Error wraps any failure to obtain a generated reply: network errors,
// timeouts, non-success HTTP statuses, malformed or empty responses.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "completion: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
