package errorx

import "fmt"

// NotFoundErrorf creates a MeridianError with type ErrorTypeNotFound and a formatted message
func NotFoundErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeNotFound,
		fmt.Sprintf(format, args...),
	)
}

func IsNotFoundError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeNotFound
}
