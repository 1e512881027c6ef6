package outcome

// ErrorInfo wraps a human-readable message plus an optional underlying
// technical cause. It is produced at the point an error is caught and is
// never constructed by the rendering layer.
type ErrorInfo struct {
	message string
	cause   error
}

// NewErrorInfo creates an ErrorInfo from a message and an optional cause.
func NewErrorInfo(message string, cause error) ErrorInfo {
	return ErrorInfo{message: message, cause: cause}
}

// ErrorInfoFrom derives an ErrorInfo from a plain error, using the error
// text as the message. A nil error yields a generic ErrorInfo.
func ErrorInfoFrom(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{message: unknownFailureMessage}
	}

	return ErrorInfo{message: err.Error(), cause: err}
}

// Message returns the human-readable message, which may be empty when the
// ErrorInfo was built without one.
func (e ErrorInfo) Message() string {
	return e.message
}

// Cause returns the underlying technical cause, which may be nil.
func (e ErrorInfo) Cause() error {
	return e.cause
}

// Error implements the error interface so an ErrorInfo can travel through
// error-aware call sites.
func (e ErrorInfo) Error() string {
	if e.message != "" {
		return e.message
	}

	if e.cause != nil {
		return e.cause.Error()
	}

	return unknownFailureMessage
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e ErrorInfo) Unwrap() error {
	return e.cause
}

func (e ErrorInfo) isZero() bool {
	return e.message == "" && e.cause == nil
}
