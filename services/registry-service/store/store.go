package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blood-donor-registry/services/registry-service/models"
)

var ErrNotFound = errors.New("record not found")

// Identifying fields whose uniqueness is enforced.
const (
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAadhar     = "aadhar"
	FieldHospitalID = "hospital_id"
)

// DuplicateError reports a write rejected by a unique index.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// Store holds donor and hospital records. Email and phone checks span both
// collections.
type Store interface {
	DonorAadharExists(ctx context.Context, aadhar string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	HospitalIDExists(ctx context.Context, hospitalID string) (bool, error)

	InsertDonor(ctx context.Context, d *models.Donor) error
	InsertHospital(ctx context.Context, h *models.Hospital) error

	FindDonorByEmail(ctx context.Context, email string) (*models.Donor, error)
	FindHospitalByHospitalID(ctx context.Context, hospitalID string) (*models.Hospital, error)

	Ping(ctx context.Context) error
}

// Unique index names, shared by the mongo and postgres schemas.
const (
	indexDonorEmail      = "donors_email_unique"
	indexDonorPhone      = "donors_phone_unique"
	indexDonorAadhar     = "donors_aadhar_unique"
	indexHospitalEmail   = "hospital_email_unique"
	indexHospitalPhone   = "hospital_phone_unique"
	indexHospitalIDField = "hospital_hospital_id_unique"
)

var indexFields = []struct {
	index string
	field string
}{
	{indexDonorEmail, FieldEmail},
	{indexDonorPhone, FieldPhone},
	{indexDonorAadhar, FieldAadhar},
	{indexHospitalEmail, FieldEmail},
	{indexHospitalPhone, FieldPhone},
	{indexHospitalIDField, FieldHospitalID},
}

// fieldForIndex finds which identifying field a driver error message refers to.
func fieldForIndex(msg string) string {
	for _, f := range indexFields {
		if strings.Contains(msg, f.index) {
			return f.field
		}
	}
	return ""
}
