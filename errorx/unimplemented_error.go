package errorx

import "fmt"

// UnimplementedErrorf creates a MeridianError with type ErrorTypeUnimplemented and a formatted message
func UnimplementedErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeUnimplemented,
		fmt.Sprintf(format, args...),
	)
}

func IsUnimplementedError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeUnimplemented
}
