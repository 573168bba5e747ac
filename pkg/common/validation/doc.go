// Package validation provides common validation utilities for configuration
// parameters across the flowrt library.
//
// Every helper returns a *errors.ValidationError that unwraps to
// errors.ErrInvalidConfiguration, so callers reject bad values at the call
// site instead of clamping them.
package validation
