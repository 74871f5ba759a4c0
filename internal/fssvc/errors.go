package fssvc

// pathEscapeError reports a parameter path that resolves outside the
// configured root. Confinement is security-relevant; every operation checks
// it before touching the disk.
type pathEscapeError struct{ path string }

func (e pathEscapeError) Error() string { return "access to path '" + e.path + "' is not allowed" }

// ErrPathEscape constructs a pathEscapeError.
func ErrPathEscape(path string) error { return pathEscapeError{path: path} }

// IsPathEscape reports whether err indicates a confinement violation.
func IsPathEscape(err error) bool {
	_, ok := err.(pathEscapeError)
	return ok
}
