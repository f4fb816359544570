package socratic

import (
	"fmt"
	"math"
	"strings"
)

// Strategy is the pedagogical style of a question.
type Strategy int

const (
	// Clarify asks the learner to state what they mean.
	Clarify Strategy = iota
	// Explore pushes on cause and effect.
	Explore
	// Confirm plays the learner's understanding back to them.
	Confirm
	// Apply transfers the concept to a concrete problem.
	Apply
)

// Strategies lists every strategy in ascending confidence order.
func Strategies() []Strategy {
	return []Strategy{Clarify, Explore, Confirm, Apply}
}

func (s Strategy) String() string {
	switch s {
	case Clarify:
		return "CLARIFY"
	case Explore:
		return "EXPLORE"
	case Confirm:
		return "CONFIRM"
	case Apply:
		return "APPLY"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts a strategy name in any case.
func ParseStrategy(s string) (Strategy, bool) {
	for _, st := range Strategies() {
		if strings.EqualFold(s, st.String()) {
			return st, true
		}
	}
	return 0, false
}

// CognitiveLoad is the fixed effort rating of a strategy, 1 (light) to 3.
func (s Strategy) CognitiveLoad() int {
	switch s {
	case Explore:
		return 2
	case Apply:
		return 3
	default:
		return 1
	}
}

// Bands are the lower confidence bounds at which each strategy after
// Clarify takes over.
type Bands struct {
	Explore float64 `yaml:"explore"`
	Confirm float64 `yaml:"confirm"`
	Apply   float64 `yaml:"apply"`
}

// DefaultBands returns the stock bands: [0,0.3) clarify, [0.3,0.6)
// explore, [0.6,0.8) confirm, [0.8,1] apply.
func DefaultBands() Bands {
	return Bands{Explore: 0.3, Confirm: 0.6, Apply: 0.8}
}

// Validate checks that the bands are ascending within [0,1].
func (b Bands) Validate() error {
	if !(0 <= b.Explore && b.Explore <= b.Confirm && b.Confirm <= b.Apply && b.Apply <= 1) {
		return fmt.Errorf("strategy bands must satisfy 0 <= explore <= confirm <= apply <= 1, got %.2f/%.2f/%.2f",
			b.Explore, b.Confirm, b.Apply)
	}
	return nil
}

// SelectStrategy maps a confidence to a strategy. It is a monotonic step
// function; NaN is treated as no confidence.
func SelectStrategy(confidence float64, b Bands) Strategy {
	switch {
	case math.IsNaN(confidence) || confidence < b.Explore:
		return Clarify
	case confidence < b.Confirm:
		return Explore
	case confidence < b.Apply:
		return Confirm
	default:
		return Apply
	}
}
