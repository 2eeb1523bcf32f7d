package errorx

import "fmt"

// InvalidArgumentErrorf creates a MeridianError with type ErrorTypeInvalidArgument and a formatted message
func InvalidArgumentErrorf(format string, args ...any) *MeridianError {
	return newWithStack(
		ErrorTypeInvalidArgument,
		fmt.Sprintf(format, args...),
	)
}

func IsInvalidArgumentError(e error) bool {
	mE, ok := IsMeridianError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeInvalidArgument
}
