package workflow

import (
	"context"
	"errors"
	"sync"

	"blood-donor-registry/services/registry-service/models"
	"blood-donor-registry/services/registry-service/notifier"
	"blood-donor-registry/services/registry-service/store"

	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	result bool
	sent   []notifier.Welcome
}

func (n *recordingNotifier) SendWelcome(_ context.Context, msg notifier.Welcome) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.result
}

func (n *recordingNotifier) calls() []notifier.Welcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.Welcome(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, payload interface{}, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return p.err
}

// faultyStore wraps a MemoryStore and fails selected operations.
type faultyStore struct {
	*store.MemoryStore
	insertErr       error
	lookupErr       error
	hideHospitalIDs bool
}

var errStoreDown = errors.New("connection refused")

func (s *faultyStore) InsertDonor(ctx context.Context, d *models.Donor) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemoryStore.InsertDonor(ctx, d)
}

func (s *faultyStore) InsertHospital(ctx context.Context, h *models.Hospital) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemoryStore.InsertHospital(ctx, h)
}

func (s *faultyStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.MemoryStore.EmailExists(ctx, email)
}

func (s *faultyStore) FindDonorByEmail(ctx context.Context, email string) (*models.Donor, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.MemoryStore.FindDonorByEmail(ctx, email)
}

// HospitalIDExists can pretend no id is taken, which reproduces two
// registrations racing past the pre-check.
func (s *faultyStore) HospitalIDExists(ctx context.Context, id string) (bool, error) {
	if s.hideHospitalIDs {
		return false, nil
	}
	return s.MemoryStore.HospitalIDExists(ctx, id)
}

func newTestRegistrar(s store.Store, n Notifier, p EventPublisher) *Registrar {
	return NewRegistrar(s, NewHospitalIDGenerator(s, 0), n, p, zap.NewNop(), RegistrarConfig{})
}

func weight(v float64) *float64 { return &v }

func donorInput() RegisterInput {
	return RegisterInput{
		FullName: "A",
		Phone:    "111",
		Email:    "a@x.com",
		Password: "p",
		Role:     "donor",
		Aadhar:   "999",
		Weight:   weight(60),
		DOB:      "2000-01-01",
	}
}

func hospitalInput() RegisterInput {
	return RegisterInput{
		FullName: "H1",
		Phone:    "222",
		Email:    "h@x.com",
		Password: "p",
		Role:     "hospital",
	}
}

func sequence(values ...int) func(int) int {
	var mu sync.Mutex
	i := 0
	return func(int) int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)]
		i++
		return v
	}
}
