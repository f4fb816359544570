package learner

import (
	"maps"
	"slices"

	"github.com/cfdlab/foamtutor/internal/knowledge"
)

// LearningStyle is how the learner prefers material to be presented.
type LearningStyle string

const (
	StyleVisual     LearningStyle = "visual"
	StyleAnalytical LearningStyle = "analytical"
	StylePractical  LearningStyle = "practical"
)

// Preferred complexity of explanations.
const (
	ComplexityBasic    = "basic"
	ComplexityModerate = "moderate"
	ComplexityAdvanced = "advanced"
)

// Preference keys understood by the tutor.
const (
	PrefExplanationDepth  = "explanation_depth"
	PrefMathComplexity    = "math_complexity"
	PrefVisualAids        = "visual_aids"
	PrefRealWorldExamples = "real_world_examples"
)

type levelPreset struct {
	complexity string
	depth      string
	math       string
}

var levelPresets = map[knowledge.Level]levelPreset{
	knowledge.LevelBeginner:     {complexity: ComplexityBasic, depth: "detailed", math: "basic"},
	knowledge.LevelIntermediate: {complexity: ComplexityModerate, depth: "moderate", math: "intermediate"},
	knowledge.LevelExpert:       {complexity: ComplexityAdvanced, depth: "concise", math: "advanced"},
}

func defaultPreferences() map[string]string {
	return map[string]string{
		PrefExplanationDepth:  "detailed",
		PrefMathComplexity:    "basic",
		PrefVisualAids:        "yes",
		PrefRealWorldExamples: "yes",
	}
}

// SetExperienceLevel records level and resets the level-driven preference
// defaults. Unknown levels are recorded without touching preferences.
func (m *Model) SetExperienceLevel(level knowledge.Level) {
	m.level = level
	preset, ok := levelPresets[level]
	if !ok {
		return
	}
	m.complexity = preset.complexity
	m.preferences[PrefExplanationDepth] = preset.depth
	m.preferences[PrefMathComplexity] = preset.math
}

// ExperienceLevel returns the current experience level.
func (m *Model) ExperienceLevel() knowledge.Level { return m.level }

// PreferredComplexity returns basic, moderate or advanced.
func (m *Model) PreferredComplexity() string { return m.complexity }

// LearningStyle returns the learner's presentation preference.
func (m *Model) LearningStyle() LearningStyle { return m.style }

// SetLearningStyle changes the presentation preference.
func (m *Model) SetLearningStyle(s LearningStyle) { m.style = s }

// SetPreference stores a free-form preference.
func (m *Model) SetPreference(key, value string) {
	m.preferences[key] = value
}

// Preference returns the value for key, or "" when unset.
func (m *Model) Preference(key string) string {
	return m.preferences[key]
}

// Preferences returns a copy of all preferences.
func (m *Model) Preferences() map[string]string {
	return maps.Clone(m.preferences)
}

// AddInterest records an application domain the learner cares about.
// Interests keep first-mention order.
func (m *Model) AddInterest(application string) {
	if application == "" || slices.Contains(m.interests, application) {
		return
	}
	m.interests = append(m.interests, application)
}

// Interests returns application interests in first-mention order.
func (m *Model) Interests() []string {
	return slices.Clone(m.interests)
}
