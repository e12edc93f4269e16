package store

import (
	"context"
	"sync"

	"blood-donor-registry/services/registry-service/models"

	"github.com/google/uuid"
)

// MemoryStore keeps records in-process. It enforces the same per-collection
// unique keys as the database indexes, which makes it usable for local runs
// and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	donors    []models.Donor
	hospitals []models.Hospital
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) DonorAadharExists(_ context.Context, aadhar string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.donors {
		if d.Aadhar == aadhar {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.donorWhere(func(d models.Donor) bool { return d.Email == email }) ||
		m.hospitalWhere(func(h models.Hospital) bool { return h.Email == email }), nil
}

func (m *MemoryStore) PhoneExists(_ context.Context, phone string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.donorWhere(func(d models.Donor) bool { return d.Phone == phone }) ||
		m.hospitalWhere(func(h models.Hospital) bool { return h.Phone == phone }), nil
}

func (m *MemoryStore) HospitalIDExists(_ context.Context, hospitalID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hospitalWhere(func(h models.Hospital) bool { return h.HospitalID == hospitalID }), nil
}

func (m *MemoryStore) InsertDonor(_ context.Context, d *models.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.donors {
		switch {
		case existing.Email == d.Email:
			return &DuplicateError{Field: FieldEmail, Err: errDuplicateKey(indexDonorEmail)}
		case existing.Phone == d.Phone:
			return &DuplicateError{Field: FieldPhone, Err: errDuplicateKey(indexDonorPhone)}
		case existing.Aadhar == d.Aadhar:
			return &DuplicateError{Field: FieldAadhar, Err: errDuplicateKey(indexDonorAadhar)}
		}
	}

	d.ID = uuid.NewString()
	m.donors = append(m.donors, *d)
	return nil
}

func (m *MemoryStore) InsertHospital(_ context.Context, h *models.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.hospitals {
		switch {
		case existing.Email == h.Email:
			return &DuplicateError{Field: FieldEmail, Err: errDuplicateKey(indexHospitalEmail)}
		case existing.Phone == h.Phone:
			return &DuplicateError{Field: FieldPhone, Err: errDuplicateKey(indexHospitalPhone)}
		case existing.HospitalID == h.HospitalID:
			return &DuplicateError{Field: FieldHospitalID, Err: errDuplicateKey(indexHospitalIDField)}
		}
	}

	h.ID = uuid.NewString()
	m.hospitals = append(m.hospitals, *h)
	return nil
}

func (m *MemoryStore) FindDonorByEmail(_ context.Context, email string) (*models.Donor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.donors {
		if d.Email == email {
			found := d
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindHospitalByHospitalID(_ context.Context, hospitalID string) (*models.Hospital, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.hospitals {
		if h.HospitalID == hospitalID {
			found := h
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Donors returns a copy of every stored donor in insertion order.
func (m *MemoryStore) Donors() []models.Donor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Donor(nil), m.donors...)
}

// Hospitals returns a copy of every stored hospital in insertion order.
func (m *MemoryStore) Hospitals() []models.Hospital {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Hospital(nil), m.hospitals...)
}

func (m *MemoryStore) donorWhere(match func(models.Donor) bool) bool {
	for _, d := range m.donors {
		if match(d) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) hospitalWhere(match func(models.Hospital) bool) bool {
	for _, h := range m.hospitals {
		if match(h) {
			return true
		}
	}
	return false
}

type errDuplicateKey string

func (e errDuplicateKey) Error() string { return "duplicate key for index " + string(e) }
