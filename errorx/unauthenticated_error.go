package errorx

import "fmt"

// UnauthenticatedErrorf creates a MeridianError with type ErrorTypeUnauthenticated and a formatted message
func UnauthenticatedErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeUnauthenticated,
		fmt.Sprintf(format, args...),
	)
}

func IsUnauthenticatedError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeUnauthenticated
}
