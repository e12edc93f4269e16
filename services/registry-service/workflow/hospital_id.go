package workflow

import (
	"context"
	"fmt"
	"math/rand/v2"
)

const (
	HospitalIDPrefix          = "HOSP"
	DefaultHospitalIDAttempts = 50
)

type hospitalIDChecker interface {
	HospitalIDExists(ctx context.Context, hospitalID string) (bool, error)
}

// HospitalIDGenerator draws HOSP + 4 digit candidates until the store has no
// hospital with that id, giving up after maxAttempts draws.
type HospitalIDGenerator struct {
	store       hospitalIDChecker
	maxAttempts int
	intn        func(n int) int
}

func NewHospitalIDGenerator(store hospitalIDChecker, maxAttempts int) *HospitalIDGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultHospitalIDAttempts
	}
	return &HospitalIDGenerator{store: store, maxAttempts: maxAttempts, intn: rand.IntN}
}

func (g *HospitalIDGenerator) Next(ctx context.Context) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		candidate := fmt.Sprintf("%s%04d", HospitalIDPrefix, g.intn(10000))

		taken, err := g.store.HospitalIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check hospital id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrHospitalIDExhausted
}
