package correction

import "fmt"

// ValidateCreate checks a create request before it leaves the process. An
// empty replacement is the delete signal and is never a valid create.
func ValidateCreate(first, last int, replacement string) error {
	if first < 0 {
		return &ValidationError{Op: "create", Reason: fmt.Sprintf("first index %d is negative", first)}
	}
	if first > last {
		return &ValidationError{Op: "create", Reason: fmt.Sprintf("first index %d is after last index %d", first, last)}
	}
	if replacement == "" {
		return &ValidationError{Op: "create", Reason: "empty replacement must be sent as a delete"}
	}
	return nil
}
