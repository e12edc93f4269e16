package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Role is either RoleDonor or RoleHospital; no other value is persisted.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDonor, RoleHospital:
		return Role(s), true
	default:
		return "", false
	}
}

func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}

func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	role, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("invalid role %q", s)
	}
	*r = role
	return nil
}

const DonorTypeBlood = "blood"

type Donor struct {
	ID             string    `bson:"_id,omitempty" gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName       string    `bson:"fullname" gorm:"column:fullname;not null" json:"fullname"`
	Phone          string    `bson:"phone" gorm:"uniqueIndex:donors_phone_unique;not null" json:"phone"`
	Email          string    `bson:"email" gorm:"uniqueIndex:donors_email_unique;not null" json:"email"`
	Password       string    `bson:"password" gorm:"not null" json:"-"`
	Role           Role      `bson:"role" gorm:"type:varchar(16);not null" json:"role"`
	RegisteredDate time.Time `bson:"registeredDate" gorm:"column:registered_date;not null" json:"registeredDate"`
	Aadhar         string    `bson:"aadhar" gorm:"uniqueIndex:donors_aadhar_unique;not null" json:"aadhar"`
	Weight         float64   `bson:"weight" json:"weight"`
	DOB            time.Time `bson:"dob" gorm:"column:dob;type:date" json:"dob"`
	DonorType      string    `bson:"donor_type" gorm:"column:donor_type;not null" json:"donor_type"`
}

func (Donor) TableName() string {
	return "donors"
}

type Hospital struct {
	ID             string    `bson:"_id,omitempty" gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName       string    `bson:"fullname" gorm:"column:fullname;not null" json:"fullname"`
	Phone          string    `bson:"phone" gorm:"uniqueIndex:hospital_phone_unique;not null" json:"phone"`
	Email          string    `bson:"email" gorm:"uniqueIndex:hospital_email_unique;not null" json:"email"`
	Password       string    `bson:"password" gorm:"not null" json:"-"`
	Role           Role      `bson:"role" gorm:"type:varchar(16);not null" json:"role"`
	RegisteredDate time.Time `bson:"registeredDate" gorm:"column:registered_date;not null" json:"registeredDate"`
	HospitalID     string    `bson:"hospital_id" gorm:"column:hospital_id;uniqueIndex:hospital_hospital_id_unique;not null" json:"hospital_id"`
}

func (Hospital) TableName() string {
	return "hospital"
}

// RegistrationEvent is published after a record has been committed.
type RegistrationEvent struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	HospitalID   string    `json:"hospital_id,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}
