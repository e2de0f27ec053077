package navigator

import "fmt"

// Error is the Navigator's typed failure mode: unknown conversation,
// out-of-range message index, or a non-directory path given to a listing.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}
