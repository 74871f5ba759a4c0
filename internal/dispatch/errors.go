package dispatch

// unsupportedCapabilityError covers both a capability the model does not
// advertise and an operation name outside the closed capability set. The two
// are deliberately indistinguishable to callers.
type unsupportedCapabilityError struct {
	modelID   string
	operation string
}

func (e unsupportedCapabilityError) Error() string {
	return "model " + e.modelID + " does not support capability " + e.operation
}

// ErrUnsupportedCapability constructs an unsupportedCapabilityError.
func ErrUnsupportedCapability(modelID, operation string) error {
	return unsupportedCapabilityError{modelID: modelID, operation: operation}
}

// IsUnsupportedCapability reports whether err indicates a capability the
// model cannot serve.
func IsUnsupportedCapability(err error) bool {
	_, ok := err.(unsupportedCapabilityError)
	return ok
}

// invalidParameterError reports a missing or malformed request parameter,
// caught before the handler runs.
type invalidParameterError struct{ msg string }

func (e invalidParameterError) Error() string { return e.msg }

// ErrInvalidParameter constructs an invalidParameterError.
func ErrInvalidParameter(msg string) error { return invalidParameterError{msg: msg} }

// IsInvalidParameter reports whether err indicates bad request parameters.
func IsInvalidParameter(err error) bool {
	_, ok := err.(invalidParameterError)
	return ok
}
