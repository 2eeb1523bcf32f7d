package errorx

import "fmt"

// AlreadyExistsErrorf creates a MeridianError with type ErrorTypeAlreadyExists and a formatted message
func AlreadyExistsErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeAlreadyExists,
		fmt.Sprintf(format, args...),
	)
}

func IsAlreadyExistsError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeAlreadyExists
}
