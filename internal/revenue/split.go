// Package revenue divides a cost-per-view charge between the viewer and the platform.
package revenue

import "errors"

// BPSDenominator is 100% expressed in basis points.
const BPSDenominator = 10000

// DefaultPlatformFeeBPS gives the viewer 70% and the platform 30%.
const DefaultPlatformFeeBPS = 3000

var (
	ErrNegativeAmount = errors.New("revenue: negative amount")
	ErrInvalidFee     = errors.New("revenue: platform fee out of range")
)

// Split returns the viewer and platform shares of cpvCents. The platform share
// is rounded down so any odd cent goes to the viewer, and the two shares
// always sum to cpvCents.
func Split(cpvCents int64, platformFeeBPS int) (viewerCents, platformCents int64, err error) {
	if cpvCents < 0 {
		return 0, 0, ErrNegativeAmount
	}
	if platformFeeBPS < 0 || platformFeeBPS > BPSDenominator {
		return 0, 0, ErrInvalidFee
	}
	platformCents = cpvCents * int64(platformFeeBPS) / BPSDenominator
	return cpvCents - platformCents, platformCents, nil
}

// Splitter binds a fixed platform fee.
type Splitter struct {
	PlatformFeeBPS int
}

func NewSplitter(platformFeeBPS int) Splitter {
	return Splitter{PlatformFeeBPS: platformFeeBPS}
}

func (s Splitter) Split(cpvCents int64) (viewerCents, platformCents int64, err error) {
	return Split(cpvCents, s.PlatformFeeBPS)
}

// ToDisplay converts minor units to the major unit shown to users.
func ToDisplay(cents int64) float64 {
	return float64(cents) / 100
}
