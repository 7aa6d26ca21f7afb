package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront client
var (
	// Authentication errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrInvalidToken     = errors.New("invalid token")

	// Request errors
	ErrRequestRejected = errors.New("request rejected")
	ErrNotFound        = errors.New("not found")

	// Cart errors
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("invalid quantity")

	// Storage errors
	ErrCorruptStore     = errors.New("corrupt local store")
	ErrDecryptionFailed = errors.New("credential decryption failed")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
