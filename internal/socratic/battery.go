package socratic

import (
	"strings"

	"github.com/cfdlab/foamtutor/internal/knowledge"
)

// LearnerView is the slice of the learner model the question batteries read.
type LearnerView interface {
	ConfidenceSource
	ExperienceLevel() knowledge.Level
}

// KeyQuestions turns a concept's catalog key questions into Questions of
// strategy s. Unknown concepts yield nil.
func (e *Engine) KeyQuestions(conceptID string, s Strategy) []Question {
	if e.concepts == nil {
		return nil
	}
	c, ok := e.concepts.Concept(conceptID)
	if !ok {
		return nil
	}
	out := make([]Question, 0, len(c.KeyQuestions))
	for _, text := range c.KeyQuestions {
		out = append(out, e.fixed(s, conceptID, text))
	}
	return out
}

func (e *Engine) fixed(s Strategy, conceptID, text string) Question {
	name := e.conceptName(conceptID)
	return Question{
		Strategy:      s,
		TargetConcept: conceptID,
		ConceptName:   name,
		Text:          text,
		CognitiveLoad: s.CognitiveLoad(),
		Success:       DefaultSuccess(conceptID, name),
	}
}

// ReynoldsQuestions is the Reynolds number battery: the key questions at
// the learner's current strategy, plus a transfer question for learners
// past the beginner level.
func (e *Engine) ReynoldsQuestions(m LearnerView) []Question {
	const id = knowledge.ConceptReynoldsNumber
	s := e.SelectOptimalStrategy(id, m)
	out := e.KeyQuestions(id, s)
	if m != nil && m.ExperienceLevel() != knowledge.LevelBeginner {
		out = append(out, e.fixed(Apply, id,
			"Estimate the Reynolds number for your own case. Which regime does it put you in, and what does that change in your setup?"))
	}
	return out
}

var geometryBCQuestions = map[string][]string{
	"internal": {
		"What velocity profile would you impose at the pipe inlet, and why?",
		"Which outlet condition keeps the pressure problem well-posed?",
		"Should the walls be no-slip, and will you resolve the near-wall region or use wall functions?",
	},
	"external": {
		"How far from the body should the far-field boundaries sit?",
		"Which conditions suit the far-field inlet and outlet?",
		"How will you treat the body surface and the flow near it?",
	},
	"channel": {
		"Is the channel long enough for the flow to develop, or do you need a developed inlet profile?",
		"Would periodic boundaries fit your channel?",
		"How do you treat the top and bottom walls?",
	},
}

var geometryAliases = map[string]string{
	"pipe": "internal", "duct": "internal", "internal": "internal", "internal_flow": "internal", "pipe_flow": "internal",
	"external": "external", "external_flow": "external", "airfoil": "external", "wing": "external", "car": "external", "vehicle": "external", "cylinder": "external",
	"channel": "channel",
}

// BoundaryConditionQuestions returns exploring questions tailored to a
// geometry type such as "pipe", "external" or "channel". Unrecognized
// geometries get the concept's generic key questions.
func (e *Engine) BoundaryConditionQuestions(geometry string) []Question {
	const id = knowledge.ConceptBoundaryConditions
	texts, ok := geometryBCQuestions[geometryAliases[strings.ToLower(strings.TrimSpace(geometry))]]
	if !ok {
		return e.KeyQuestions(id, Explore)
	}
	out := make([]Question, 0, len(texts))
	for _, t := range texts {
		out = append(out, e.fixed(Explore, id, t))
	}
	return out
}

// TurbulenceQuestions is the turbulence battery. Beyond the key questions,
// non-beginners are asked to choose and defend a turbulence model.
func (e *Engine) TurbulenceQuestions(m LearnerView) []Question {
	const id = knowledge.ConceptTurbulence
	s := e.SelectOptimalStrategy(id, m)
	out := e.KeyQuestions(id, s)
	if m != nil && m.ExperienceLevel() != knowledge.LevelBeginner {
		out = append(out, e.fixed(Apply, id,
			"Which turbulence model would you pick for your case (k-epsilon, k-omega SST, Spalart-Allmaras or LES), and what would make you change your mind?"))
	}
	return out
}
