package impair

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// Decision is the disposition of a packet.
type Decision int

const (
	// DecisionPass forwards the packet unmodified.
	DecisionPass = Decision(iota)

	// DecisionDrop discards the packet.
	DecisionDrop

	// DecisionTagAndPass forwards a copy of the packet with the ECN bit set.
	DecisionTagAndPass
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "pass"
	case DecisionDrop:
		return "drop"
	case DecisionTagAndPass:
		return "tag"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Policy decides what to do with sender->receiver packets. Construct
// using [NewPolicy]. Like [RateWindow], it is owned by the relay loop.
type Policy struct {
	config Config
	rng    *rand.Rand
}

// NewPolicy creates a new [*Policy]. The source MUST NOT be nil; use
// [NewSeededSource] or [NewEntropySource] to create one.
func NewPolicy(config Config, source rand.Source) *Policy {
	return &Policy{
		config: config,
		rng:    rand.New(source),
	}
}

// Config returns the policy configuration.
func (p *Policy) Config() Config {
	return p.config
}

// Decide returns the disposition of the packet that has just been
// accounted in w using [RateWindow.Increment]. In ECN mode, tagging a
// packet latches w.Tagged until the window is reset.
func (p *Policy) Decide(w *RateWindow) Decision {
	if w.Count <= p.config.Limit {
		return DecisionPass
	}
	switch p.config.Mode {
	case ModeECN:
		if w.Tagged {
			return DecisionPass
		}
		w.Tagged = true
		return DecisionTagAndPass
	case ModeDrop:
		if p.rng.Float64() <= p.config.ForwardProbability {
			return DecisionPass
		}
		return DecisionDrop
	default:
		panic(fmt.Sprintf("impair: unhandled mode: %s", p.config.Mode))
	}
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewEntropySource returns a source seeded from the system entropy.
func NewEntropySource() (rand.Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("impair: cannot seed random source: %w", err)
	}
	return rand.NewChaCha8(seed), nil
}
