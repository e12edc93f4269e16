package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blood-donor-registry/services/registry-service/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps the same collections as tables. Unique indexes are
// declared through the model tags.
type PostgresStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostgresStore(db *gorm.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

// EnsureSchema creates the donors and hospital tables with their indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Donor{}, &models.Hospital{}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) exists(ctx context.Context, model interface{}, column, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	err := s.db.WithContext(ctx).Model(model).Where(column+" = ?", value).Limit(1).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", column, err)
	}
	return n > 0, nil
}

func (s *PostgresStore) DonorAadharExists(ctx context.Context, aadhar string) (bool, error) {
	return s.exists(ctx, &models.Donor{}, "aadhar", aadhar)
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	found, err := s.exists(ctx, &models.Donor{}, "email", email)
	if err != nil || found {
		return found, err
	}
	return s.exists(ctx, &models.Hospital{}, "email", email)
}

func (s *PostgresStore) PhoneExists(ctx context.Context, phone string) (bool, error) {
	found, err := s.exists(ctx, &models.Donor{}, "phone", phone)
	if err != nil || found {
		return found, err
	}
	return s.exists(ctx, &models.Hospital{}, "phone", phone)
}

func (s *PostgresStore) HospitalIDExists(ctx context.Context, hospitalID string) (bool, error) {
	return s.exists(ctx, &models.Hospital{}, "hospital_id", hospitalID)
}

func (s *PostgresStore) InsertDonor(ctx context.Context, d *models.Donor) error {
	return s.insert(ctx, d)
}

func (s *PostgresStore) InsertHospital(ctx context.Context, h *models.Hospital) error {
	return s.insert(ctx, h)
}

func (s *PostgresStore) insert(ctx context.Context, record interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return insertError(err)
	}
	return nil
}

// insertError maps a unique violation to a DuplicateError keyed by the
// constraint that rejected the row.
func insertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Field: fieldForIndex(pgErr.ConstraintName), Err: err}
	}
	return fmt.Errorf("failed to insert record: %w", err)
}

func (s *PostgresStore) FindDonorByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var d models.Donor
	if err := s.first(ctx, &d, "email = ?", email); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) FindHospitalByHospitalID(ctx context.Context, hospitalID string) (*models.Hospital, error) {
	var h models.Hospital
	if err := s.first(ctx, &h, "hospital_id = ?", hospitalID); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *PostgresStore) first(ctx context.Context, out interface{}, query string, arg string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Where(query, arg).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
