package store

import (
	"context"
	"errors"
	"testing"

	"blood-donor-registry/services/registry-service/models"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*MongoStore)(nil)
var _ Store = (*PostgresStore)(nil)

func TestMemoryStoreEmailAndPhoneSpanBothCollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.InsertDonor(ctx, &models.Donor{Email: "a@x.com", Phone: "111", Aadhar: "999"}); err != nil {
		t.Fatalf("insert donor: %v", err)
	}
	if err := s.InsertHospital(ctx, &models.Hospital{Email: "h@x.com", Phone: "222", HospitalID: "HOSP0001"}); err != nil {
		t.Fatalf("insert hospital: %v", err)
	}

	for _, email := range []string{"a@x.com", "h@x.com"} {
		found, err := s.EmailExists(ctx, email)
		if err != nil || !found {
			t.Fatalf("EmailExists(%q) = %v, %v", email, found, err)
		}
	}
	for _, phone := range []string{"111", "222"} {
		found, err := s.PhoneExists(ctx, phone)
		if err != nil || !found {
			t.Fatalf("PhoneExists(%q) = %v, %v", phone, found, err)
		}
	}
	if found, _ := s.EmailExists(ctx, "nobody@x.com"); found {
		t.Fatal("unexpected email match")
	}
	if found, _ := s.DonorAadharExists(ctx, "999"); !found {
		t.Fatal("expected aadhar match")
	}
	if found, _ := s.HospitalIDExists(ctx, "HOSP0001"); !found {
		t.Fatal("expected hospital id match")
	}
}

func TestMemoryStoreInsertAssignsIDAndEnforcesUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := &models.Donor{Email: "a@x.com", Phone: "111", Aadhar: "999"}
	if err := s.InsertDonor(ctx, d); err != nil {
		t.Fatalf("insert donor: %v", err)
	}
	if d.ID == "" {
		t.Fatal("expected store-assigned id")
	}

	err := s.InsertDonor(ctx, &models.Donor{Email: "b@x.com", Phone: "333", Aadhar: "999"})
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Field != FieldAadhar {
		t.Fatalf("expected aadhar duplicate, got %v", err)
	}

	if err := s.InsertHospital(ctx, &models.Hospital{Email: "h@x.com", Phone: "222", HospitalID: "HOSP0001"}); err != nil {
		t.Fatalf("insert hospital: %v", err)
	}
	err = s.InsertHospital(ctx, &models.Hospital{Email: "i@x.com", Phone: "444", HospitalID: "HOSP0001"})
	if !errors.As(err, &dup) || dup.Field != FieldHospitalID {
		t.Fatalf("expected hospital id duplicate, got %v", err)
	}

	if got := len(s.Donors()); got != 1 {
		t.Fatalf("unexpected donor count: %d", got)
	}
	if got := len(s.Hospitals()); got != 1 {
		t.Fatalf("unexpected hospital count: %d", got)
	}
}

func TestMemoryStoreFindReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.FindDonorByEmail(ctx, "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.FindHospitalByHospitalID(ctx, "HOSP0001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
