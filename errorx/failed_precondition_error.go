package errorx

import "fmt"

// FailedPreconditionErrorf creates a MeridianError with type ErrorTypeFailedPrecondition and a formatted message
func FailedPreconditionErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeFailedPrecondition,
		fmt.Sprintf(format, args...),
	)
}

func IsFailedPreconditionError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeFailedPrecondition
}
