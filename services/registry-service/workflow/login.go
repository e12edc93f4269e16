package workflow

import (
	"context"
	"errors"

	"blood-donor-registry/pkg/middleware"
	"blood-donor-registry/pkg/security"
	"blood-donor-registry/services/registry-service/models"
	"blood-donor-registry/services/registry-service/store"

	"go.uber.org/zap"
)

// LoginInput.Identifier is the email for donors and the hospital id for
// hospitals.
type LoginInput struct {
	Role       string
	Identifier string
	Password   string
}

type LoginResult struct {
	Role     models.Role
	FullName string
	Email    string
}

type Authenticator struct {
	store  store.Store
	logger *zap.Logger
}

func NewAuthenticator(s store.Store, logger *zap.Logger) *Authenticator {
	return &Authenticator{store: s, logger: logger}
}

type credentials struct {
	fullName string
	email    string
	hash     string
}

// Login never tells an unknown identifier apart from a wrong password.
func (a *Authenticator) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := a.logger.With(zap.String("trace_id", middleware.TraceIDFromContext(ctx)))

	if blank(in.Role) || blank(in.Identifier) || blank(in.Password) {
		return nil, invalid(msgMissingFields)
	}

	role, ok := models.ParseRole(in.Role)
	if !ok {
		security.EqualizeTiming(in.Password)
		log.Warn("failed login attempt", zap.String("reason", "unknown role"))
		return nil, ErrInvalidCredentials
	}

	creds, err := a.lookup(ctx, role, in.Identifier)
	if errors.Is(err, store.ErrNotFound) {
		security.EqualizeTiming(in.Password)
		log.Warn("failed login attempt", zap.String("role", string(role)))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !security.CheckPasswordHash(in.Password, creds.hash) {
		log.Warn("failed login attempt", zap.String("role", string(role)))
		return nil, ErrInvalidCredentials
	}

	log.Info("user logged in", zap.String("role", string(role)))
	return &LoginResult{Role: role, FullName: creds.fullName, Email: creds.email}, nil
}

func (a *Authenticator) lookup(ctx context.Context, role models.Role, identifier string) (*credentials, error) {
	switch role {
	case models.RoleDonor:
		d, err := a.store.FindDonorByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return &credentials{fullName: d.FullName, email: d.Email, hash: d.Password}, nil
	case models.RoleHospital:
		h, err := a.store.FindHospitalByHospitalID(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return &credentials{fullName: h.FullName, email: h.Email, hash: h.Password}, nil
	default:
		return nil, store.ErrNotFound
	}
}
