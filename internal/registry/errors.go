package registry

// modelNotFoundError reports a lookup for an id that was never registered.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// duplicateModelError reports a second registration under an existing id.
type duplicateModelError struct{ id string }

func (e duplicateModelError) Error() string { return "model already registered: " + e.id }

// ErrDuplicateModel constructs a duplicateModelError.
func ErrDuplicateModel(id string) error { return duplicateModelError{id: id} }

// IsDuplicateModel reports whether the error indicates a duplicate id.
func IsDuplicateModel(err error) bool {
	_, ok := err.(duplicateModelError)
	return ok
}
