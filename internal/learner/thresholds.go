package learner

// Thresholds holds the empirically chosen constants that drive the learner
// model. They are configuration, not derived values.
type Thresholds struct {
	// Confused marks a concept confused when confidence falls below it.
	Confused float64 `yaml:"confused"`
	// Strong marks an understood concept strong when confidence exceeds it.
	Strong float64 `yaml:"strong"`
	// Understood is the confidence a question response must exceed for the
	// concept to count as understood.
	Understood float64 `yaml:"understood"`
	// Advanced is the fallback confidence required for advanced topics
	// without a dedicated readiness rule.
	Advanced float64 `yaml:"advanced"`
	// CorrectStep and IncorrectStep move confidence after a graded answer.
	CorrectStep   float64 `yaml:"correct_step"`
	IncorrectStep float64 `yaml:"incorrect_step"`
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Confused:      0.4,
		Strong:        0.7,
		Understood:    0.5,
		Advanced:      0.6,
		CorrectStep:   0.10,
		IncorrectStep: 0.15,
	}
}

// DefaultCoreConcepts is the priority-ordered list of concepts every learner
// is expected to understand before setting up a case.
func DefaultCoreConcepts() []string {
	return []string{
		"reynolds_number",
		"boundary_conditions",
		"turbulence",
		"mesh_quality",
		"solver_selection",
		"convergence",
	}
}

// DefaultAdvancedRules maps advanced topics to the concepts that must be
// understood first.
func DefaultAdvancedRules() map[string][]string {
	return map[string][]string{
		"turbulence_modeling": {"reynolds_number", "boundary_layer"},
		"multiphase_flow":     {"surface_tension", "contact_angle"},
	}
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
