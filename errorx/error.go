package errorx

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MeridianError is the error type surfaced by every client operation. It
// carries the service error type, a human readable message, and, when the
// error wraps a transport failure, the underlying cause.
type MeridianError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`

	OriginalError error // Not returned to clients
	stack         Callers
}

var _ error = (*MeridianError)(nil)

func (e MeridianError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// StatusCode returns the numeric code of the error as it appears on the wire.
func (e MeridianError) StatusCode() int {
	return e.Type.StatusCode()
}

func (e MeridianError) Unwrap() error {
	return e.OriginalError
}

// Format implements the fmt.Formatter interface. The plus flag appends the
// stack trace captured at creation time.
func (e MeridianError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		io.WriteString(s, e.Error())
		if s.Flag('+') && len(e.stack) > 0 {
			io.WriteString(s, "\n")
			e.stack.writeTrace(s)
		}
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func newWithStack(t ErrorType, msg string) *MeridianError {
	return &MeridianError{
		Type:    t,
		Message: msg,
		stack:   callers(2),
	}
}

// NewFromStatusCode builds a MeridianError from the numeric code returned by
// the service, preserving the service message verbatim.
func NewFromStatusCode(code int, format string, args ...any) *MeridianError {
	return &MeridianError{
		Type:    ErrorTypeFromStatusCode(code),
		Message: fmt.Sprintf(format, args...),
		stack:   callers(1),
	}
}

// IsMeridianError returns the MeridianError wrapped (at any depth) by e, if
// there is one.
func IsMeridianError(e error) (*MeridianError, bool) {
	e = errors.Cause(e)

	var mE *MeridianError
	switch t := e.(type) {
	case MeridianError:
		mE = &t
	case *MeridianError:
		mE = t
	default:
		return nil, false
	}

	if mE.Type == ErrorTypeUnspecified {
		return nil, false
	}

	return mE, true
}
