package errorx

import "net/http"

type ErrorType string

// Error types mirror the subset of the canonical status codes the Meridian
// API surfaces, keyed by their HTTP numeric code on the wire.
const (
	// The Unspecified type should not be used, it is only useful to assert
	// whether or not an error is a MeridianError during cast.
	ErrorTypeUnspecified        = ErrorType("")
	ErrorTypeAlreadyExists      = ErrorType("ALREADY_EXISTS")
	ErrorTypeFailedPrecondition = ErrorType("FAILED_PRECONDITION")
	ErrorTypeInternal           = ErrorType("INTERNAL")
	ErrorTypeInvalidArgument    = ErrorType("INVALID_ARGUMENT")
	ErrorTypeNotFound           = ErrorType("NOT_FOUND")
	ErrorTypePermissionDenied   = ErrorType("PERMISSION_DENIED")
	ErrorTypeUnauthenticated    = ErrorType("UNAUTHENTICATED")
	ErrorTypeUnimplemented      = ErrorType("UNIMPLEMENTED")
)

func ParseErrorType(s string) (ErrorType, error) {
	e := ErrorType(s)
	if err := e.Validate(); err != nil {
		return ErrorTypeUnspecified, err
	}

	return e, nil
}

func (e ErrorType) String() string {
	return string(e)
}

func (e ErrorType) Validate() error {
	switch e {
	case ErrorTypeAlreadyExists,
		ErrorTypeFailedPrecondition,
		ErrorTypeInternal,
		ErrorTypeInvalidArgument,
		ErrorTypeNotFound,
		ErrorTypePermissionDenied,
		ErrorTypeUnauthenticated,
		ErrorTypeUnimplemented:
		return nil
	default:
		return InvalidArgumentErrorf("invalid error type: %s", e)
	}
}

// StatusCode returns the numeric wire code for the error type.
func (e ErrorType) StatusCode() int {
	switch e {
	case ErrorTypeAlreadyExists:
		return http.StatusConflict
	case ErrorTypeFailedPrecondition:
		return http.StatusPreconditionFailed
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypePermissionDenied:
		return http.StatusForbidden
	case ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case ErrorTypeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrorTypeFromStatusCode maps a numeric wire code back to an error type.
// Unknown codes map to INTERNAL.
func ErrorTypeFromStatusCode(code int) ErrorType {
	switch code {
	case http.StatusConflict:
		return ErrorTypeAlreadyExists
	case http.StatusPreconditionFailed:
		return ErrorTypeFailedPrecondition
	case http.StatusBadRequest:
		return ErrorTypeInvalidArgument
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusForbidden:
		return ErrorTypePermissionDenied
	case http.StatusUnauthorized:
		return ErrorTypeUnauthenticated
	case http.StatusNotImplemented:
		return ErrorTypeUnimplemented
	default:
		return ErrorTypeInternal
	}
}
