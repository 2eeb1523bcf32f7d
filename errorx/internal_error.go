package errorx

import "fmt"

// InternalErrorf creates a MeridianError with type ErrorTypeInternal and a formatted message
func InternalErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeInternal,
		fmt.Sprintf(format, args...),
	)
}

func IsInternalError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeInternal
}
