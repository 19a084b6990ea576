//go:build !darwin

package permissions

// CheckMicrophone always reports Authorized on non-macOS platforms.
func CheckMicrophone() Status {
	return Authorized
}

// RequestMicrophone is a no-op on non-macOS platforms.
func RequestMicrophone() {}

// EnsureMicrophone is a no-op on non-macOS platforms.
func EnsureMicrophone() error {
	return nil
}
