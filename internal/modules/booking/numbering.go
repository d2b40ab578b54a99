package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hotelcore/internal/pkg/dates"
)

const maxNumberAttempts = 5

// NumberGenerator issues booking numbers of the form BK-YYYYMMDD-XXXXXXXX.
// Every candidate is checked against storage; the unique index catches the rest.
type NumberGenerator struct {
	clock  dates.Clock
	suffix func() string
}

func NewNumberGenerator(clock dates.Clock) *NumberGenerator {
	return &NumberGenerator{clock: clock, suffix: randomSuffix}
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (g *NumberGenerator) Next(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	prefix := "BK-" + g.clock.Now().UTC().Format("20060102") + "-"
	for i := 0; i < maxNumberAttempts; i++ {
		candidate := prefix + g.suffix()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free booking number after %d attempts", maxNumberAttempts)
}
