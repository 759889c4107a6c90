// Package impair contains the impairment policy applied by the medium
// to the sender->receiver path: per-second rate accounting and the
// decision to pass, drop, or ECN-tag each packet.
package impair

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the impairment mode.
type Mode int

const (
	// ModeDrop randomly drops packets above the rate limit.
	ModeDrop = Mode(iota)

	// ModeECN tags the first packet above the rate limit in each window.
	ModeECN
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeDrop:
		return "drop"
	case ModeECN:
		return "ecn"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrUnknownMode indicates that [ParseMode] did not recognize its input.
var ErrUnknownMode = errors.New("impair: unknown mode")

// ParseMode parses the textual representation of a [Mode]. The
// comparison is case insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return ModeDrop, nil
	case "ecn":
		return ModeECN, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// DefaultLimit is the default number of packets per second after
// which the policy starts impairing traffic.
const DefaultLimit = 100

// DefaultForwardProbability is the probability of forwarding a packet
// above the limit in [ModeDrop].
const DefaultForwardProbability = 0.7

// Config configures the [*Policy]. Construct using [NewConfig].
type Config struct {
	// Mode is the impairment mode.
	Mode Mode

	// Limit is the per-second threshold. Packets whose arrival count
	// in the current window is strictly greater than Limit are impaired.
	Limit int64

	// ForwardProbability is the probability in [0, 1] of forwarding
	// an over-threshold packet in [ModeDrop].
	ForwardProbability float64
}

// ErrInvalidConfig indicates that a [Config] is not valid.
var ErrInvalidConfig = errors.New("impair: invalid config")

// NewConfig returns a [Config] using the given mode and limit and the
// default forward probability.
func NewConfig(mode Mode, limit int64) Config {
	return Config{
		Mode:               mode,
		Limit:              limit,
		ForwardProbability: DefaultForwardProbability,
	}
}

// Validate returns an error wrapping [ErrInvalidConfig] if c is not valid.
func (c Config) Validate() error {
	if c.Mode != ModeDrop && c.Mode != ModeECN {
		return fmt.Errorf("%w: mode %s", ErrInvalidConfig, c.Mode)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.ForwardProbability < 0 || c.ForwardProbability > 1 {
		return fmt.Errorf("%w: forward probability out of range: %f", ErrInvalidConfig, c.ForwardProbability)
	}
	return nil
}
