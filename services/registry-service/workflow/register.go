package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blood-donor-registry/pkg/middleware"
	"blood-donor-registry/pkg/security"
	"blood-donor-registry/services/registry-service/models"
	"blood-donor-registry/services/registry-service/notifier"
	"blood-donor-registry/services/registry-service/store"

	"go.uber.org/zap"
)

const (
	DOBLayout          = "2006-01-02"
	DefaultMailTimeout = 10 * time.Second

	// Insert attempts when a freshly generated hospital id loses a race
	// against a concurrent registration.
	hospitalInsertAttempts = 3
)

type Notifier interface {
	SendWelcome(ctx context.Context, msg notifier.Welcome) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, payload interface{}, correlationID string) error
}

type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
	Role     string

	// Donor only.
	Aadhar string
	Weight *float64
	DOB    string
}

type UserEcho struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type RegisterResult struct {
	ID         string
	Message    string
	EmailSent  bool
	User       UserEcho
	HospitalID string
}

type RegistrarConfig struct {
	MailTimeout time.Duration
}

type Registrar struct {
	store     store.Store
	ids       *HospitalIDGenerator
	notifier  Notifier
	publisher EventPublisher
	logger    *zap.Logger
	cfg       RegistrarConfig
	now       func() time.Time
}

// NewRegistrar wires the registration workflow. publisher may be nil.
func NewRegistrar(s store.Store, ids *HospitalIDGenerator, n Notifier, publisher EventPublisher, logger *zap.Logger, cfg RegistrarConfig) *Registrar {
	if cfg.MailTimeout <= 0 {
		cfg.MailTimeout = DefaultMailTimeout
	}
	return &Registrar{
		store:     s,
		ids:       ids,
		notifier:  n,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Register validates in, persists exactly one record and sends the welcome
// email. Checks run in the order aadhar, email, phone, role and no write
// happens before all of them pass.
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	log := r.logger.With(zap.String("trace_id", middleware.TraceIDFromContext(ctx)))

	if blank(in.FullName) || blank(in.Phone) || blank(in.Email) || blank(in.Password) || blank(in.Role) {
		return nil, invalid(msgMissingFields)
	}

	isDonor := in.Role == string(models.RoleDonor)

	var dob time.Time
	if isDonor {
		if blank(in.Aadhar) || in.Weight == nil || blank(in.DOB) {
			return nil, invalid(msgMissingDonorFields)
		}
		parsed, err := time.Parse(DOBLayout, strings.TrimSpace(in.DOB))
		if err != nil {
			return nil, invalid(msgInvalidDOB)
		}
		dob = parsed
		if *in.Weight <= 0 {
			return nil, invalid(msgInvalidWeight)
		}

		taken, err := r.store.DonorAadharExists(ctx, in.Aadhar)
		if err != nil {
			return nil, err
		}
		if taken {
			log.Warn("registration rejected", zap.String("reason", "duplicate aadhar"))
			return nil, invalid(msgDuplicateAadhar)
		}
	}

	taken, err := r.store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		log.Warn("registration rejected", zap.String("reason", "duplicate email"))
		return nil, invalid(msgDuplicateEmail)
	}

	taken, err = r.store.PhoneExists(ctx, in.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		log.Warn("registration rejected", zap.String("reason", "duplicate phone"))
		return nil, invalid(msgDuplicatePhone)
	}

	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, invalid(msgInvalidRole)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	registered := r.now().UTC()

	res := &RegisterResult{
		User: UserEcho{Name: in.FullName, Email: in.Email, Role: role},
	}

	switch role {
	case models.RoleDonor:
		donor := &models.Donor{
			FullName:       in.FullName,
			Phone:          in.Phone,
			Email:          in.Email,
			Password:       hash,
			Role:           models.RoleDonor,
			RegisteredDate: registered,
			Aadhar:         in.Aadhar,
			Weight:         *in.Weight,
			DOB:            dob,
			DonorType:      models.DonorTypeBlood,
		}
		if err := r.store.InsertDonor(ctx, donor); err != nil {
			return nil, duplicateAsValidation(err)
		}
		res.ID = donor.ID
		res.Message = "Donor registered successfully"

	case models.RoleHospital:
		hospital := &models.Hospital{
			FullName:       in.FullName,
			Phone:          in.Phone,
			Email:          in.Email,
			Password:       hash,
			Role:           models.RoleHospital,
			RegisteredDate: registered,
		}
		if err := r.insertHospital(ctx, hospital); err != nil {
			return nil, duplicateAsValidation(err)
		}
		res.ID = hospital.ID
		res.HospitalID = hospital.HospitalID
		res.Message = "Hospital registered successfully. Your Hospital ID is " + hospital.HospitalID

	default:
		return nil, fmt.Errorf("unhandled role %q", role)
	}

	log.Info("user registered", zap.String("id", res.ID), zap.String("role", string(role)))

	res.EmailSent = r.notify(ctx, log, notifier.Welcome{
		To:         in.Email,
		Name:       in.FullName,
		Role:       role,
		HospitalID: res.HospitalID,
	})
	if !res.EmailSent {
		log.Warn("registration committed but welcome email was not sent", zap.String("id", res.ID))
	}

	r.publish(ctx, log, models.RegistrationEvent{
		ID:           res.ID,
		Role:         role,
		Name:         in.FullName,
		Email:        in.Email,
		HospitalID:   res.HospitalID,
		RegisteredAt: registered,
	})

	return res, nil
}

// insertHospital assigns a generated id and inserts, drawing a new id when the
// unique index reports a collision.
func (r *Registrar) insertHospital(ctx context.Context, h *models.Hospital) error {
	var err error
	for i := 0; i < hospitalInsertAttempts; i++ {
		h.HospitalID, err = r.ids.Next(ctx)
		if err != nil {
			return err
		}

		err = r.store.InsertHospital(ctx, h)
		var dup *store.DuplicateError
		if errors.As(err, &dup) && dup.Field == store.FieldHospitalID {
			continue
		}
		return err
	}
	return ErrHospitalIDExhausted
}

func duplicateAsValidation(err error) error {
	var dup *store.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}
	switch dup.Field {
	case store.FieldAadhar:
		return invalid(msgDuplicateAadhar)
	case store.FieldEmail:
		return invalid(msgDuplicateEmail)
	case store.FieldPhone:
		return invalid(msgDuplicatePhone)
	default:
		return err
	}
}

// notify runs the welcome email on its own deadline, detached from the
// request's cancellation. The registration is already committed.
func (r *Registrar) notify(ctx context.Context, log *zap.Logger, msg notifier.Welcome) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.MailTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("welcome email panicked", zap.Any("panic", rec))
				done <- false
			}
		}()
		done <- r.notifier.SendWelcome(ctx, msg)
	}()

	select {
	case sent := <-done:
		return sent
	case <-ctx.Done():
		return false
	}
}

func (r *Registrar) publish(ctx context.Context, log *zap.Logger, event models.RegistrationEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(context.WithoutCancel(ctx), event, middleware.TraceIDFromContext(ctx)); err != nil {
		log.Warn("registration saved but failed to publish event", zap.Error(err))
	}
}
