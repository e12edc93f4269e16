package workflow

import "errors"

// ValidationError is a client-facing rejection; Reason is safe to return.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(reason string) error { return &ValidationError{Reason: reason} }

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrHospitalIDExhausted = errors.New("could not generate a unique hospital id")
)

const (
	msgMissingFields      = "Missing required fields"
	msgMissingDonorFields = "Missing donor fields: aadhar, weight and dob are required"
	msgInvalidDOB         = "Invalid date of birth, expected YYYY-MM-DD"
	msgInvalidWeight      = "Invalid weight"
	msgDuplicateAadhar    = "Aadhar number already registered"
	msgDuplicateEmail     = "Email already registered"
	msgDuplicatePhone     = "Phone number already registered"
	msgInvalidRole        = "Invalid role"
)
