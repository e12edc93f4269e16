package workflow

import (
	"context"
	"errors"
	"testing"

	"blood-donor-registry/services/registry-service/models"
	"blood-donor-registry/services/registry-service/store"

	"go.uber.org/zap"
)

func seededAuthenticator(t *testing.T) (*Authenticator, string) {
	t.Helper()
	s := store.NewMemoryStore()
	r := newTestRegistrar(s, &recordingNotifier{result: true}, nil)
	ctx := context.Background()

	if _, err := r.Register(ctx, donorInput()); err != nil {
		t.Fatalf("register donor: %v", err)
	}
	res, err := r.Register(ctx, hospitalInput())
	if err != nil {
		t.Fatalf("register hospital: %v", err)
	}
	return NewAuthenticator(s, zap.NewNop()), res.HospitalID
}

func TestLoginHospitalWithGeneratedID(t *testing.T) {
	a, hospitalID := seededAuthenticator(t)

	res, err := a.Login(context.Background(), LoginInput{Role: "hospital", Identifier: hospitalID, Password: "p"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != models.RoleHospital || res.FullName != "H1" || res.Email != "h@x.com" {
		t.Fatalf("unexpected login result: %+v", res)
	}
}

func TestLoginDonorByEmail(t *testing.T) {
	a, _ := seededAuthenticator(t)

	res, err := a.Login(context.Background(), LoginInput{Role: "donor", Identifier: "a@x.com", Password: "p"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.FullName != "A" || res.Email != "a@x.com" {
		t.Fatalf("unexpected login result: %+v", res)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	a, hospitalID := seededAuthenticator(t)
	ctx := context.Background()

	for _, in := range []LoginInput{
		{Role: "hospital", Identifier: hospitalID, Password: "wrong"},
		{Role: "hospital", Identifier: "HOSP0000x", Password: "p"},
		{Role: "donor", Identifier: "a@x.com", Password: "wrong"},
		{Role: "donor", Identifier: "nobody@x.com", Password: "p"},
		// Identifiers are role specific.
		{Role: "donor", Identifier: hospitalID, Password: "p"},
		{Role: "hospital", Identifier: "h@x.com", Password: "p"},
		{Role: "admin", Identifier: "a@x.com", Password: "p"},
	} {
		_, err := a.Login(ctx, in)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login %+v: expected ErrInvalidCredentials, got %v", in, err)
		}
	}
}

func TestLoginComparesExactly(t *testing.T) {
	a, _ := seededAuthenticator(t)

	_, err := a.Login(context.Background(), LoginInput{Role: "donor", Identifier: "A@X.COM", Password: "p"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected no identifier normalization, got %v", err)
	}
	_, err = a.Login(context.Background(), LoginInput{Role: "donor", Identifier: "a@x.com", Password: "p "})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected no password normalization, got %v", err)
	}
}

func TestLoginMissingFields(t *testing.T) {
	a, _ := seededAuthenticator(t)

	for _, in := range []LoginInput{
		{Identifier: "a@x.com", Password: "p"},
		{Role: "donor", Password: "p"},
		{Role: "donor", Identifier: "a@x.com"},
	} {
		_, err := a.Login(context.Background(), in)
		expectValidation(t, err, "Missing required fields")
	}
}

func TestLoginStoreFailureIsServerError(t *testing.T) {
	s := &faultyStore{MemoryStore: store.NewMemoryStore(), lookupErr: errStoreDown}
	a := NewAuthenticator(s, zap.NewNop())

	_, err := a.Login(context.Background(), LoginInput{Role: "donor", Identifier: "a@x.com", Password: "p"})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}
