package errorx

import "fmt"

// PermissionDeniedErrorf creates a MeridianError with type ErrorTypePermissionDenied and a formatted message
func PermissionDeniedErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypePermissionDenied,
		fmt.Sprintf(format, args...),
	)
}

func IsPermissionDeniedError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypePermissionDenied
}
