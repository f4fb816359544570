package dialogue

import (
	"slices"

	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/learner"
	"github.com/cfdlab/foamtutor/internal/socratic"
)

// readyConfidence is the overall confidence a learner must exceed before
// case generation.
const readyConfidence = 0.6

// caseRequirements lists the concepts each case type depends on.
var caseRequirements = map[string][]string{
	"pipe_flow":     {knowledge.ConceptReynoldsNumber, knowledge.ConceptBoundaryConditions, knowledge.ConceptMeshQuality},
	"external_flow": {knowledge.ConceptReynoldsNumber, knowledge.ConceptTurbulence, knowledge.ConceptBoundaryConditions, knowledge.ConceptMeshRefinement},
	"heat_transfer": {knowledge.ConceptHeatTransfer, knowledge.ConceptBoundaryConditions, "material_properties"},
	"multiphase":    {knowledge.ConceptSurfaceTension, knowledge.ConceptContactAngle, "phase_properties", "vof_method"},
}

// gapSuggestions are the canned prompts offered for the first core gaps.
var gapSuggestions = map[string]string{
	knowledge.ConceptReynoldsNumber:     "How do you calculate Reynolds number for your application?",
	knowledge.ConceptBoundaryConditions: "What boundary conditions are appropriate for your problem?",
	knowledge.ConceptTurbulence:         "Do you expect your flow to be turbulent or laminar?",
}

// IsUserReadyForCaseGeneration reports whether the readiness concepts are
// all understood and overall confidence exceeds 0.6.
func (o *Orchestrator) IsUserReadyForCaseGeneration() bool {
	for _, id := range o.readiness {
		if !o.model.IsUnderstood(id) {
			return false
		}
	}
	return o.model.OverallConfidence() > readyConfidence
}

// RequiredConceptsForCase returns the concepts a case type depends on, or
// nil for unknown case types.
func RequiredConceptsForCase(caseType string) []string {
	return slices.Clone(caseRequirements[caseType])
}

// CaseTypes lists the case types with known requirements.
func CaseTypes() []string {
	out := make([]string, 0, len(caseRequirements))
	for k := range caseRequirements {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// RequiredConceptsForCase returns the concepts a case type depends on.
func (o *Orchestrator) RequiredConceptsForCase(caseType string) []string {
	return RequiredConceptsForCase(caseType)
}

// OverallLearningProgress is the learner's mean confidence.
func (o *Orchestrator) OverallLearningProgress() float64 {
	return o.model.OverallConfidence()
}

// KnowledgeGaps returns the core concepts not yet understood.
func (o *Orchestrator) KnowledgeGaps() []string {
	return o.model.IdentifyKnowledgeGaps()
}

// NextLearningObjective names the first gap to work on.
func (o *Orchestrator) NextLearningObjective() string {
	if gaps := o.model.IdentifyKnowledgeGaps(); len(gaps) > 0 {
		return "Focus on understanding: " + gaps[0]
	}
	return "Ready for advanced topics"
}

// SuggestedQuestions offers questions the learner could ask next, one per
// knowledge gap. Gaps without a canned prompt use the concept's first key
// question from the catalog.
func (o *Orchestrator) SuggestedQuestions() []string {
	var out []string
	for _, id := range o.model.IdentifyKnowledgeGaps() {
		if s, ok := gapSuggestions[id]; ok {
			out = append(out, s)
			continue
		}
		if qs := o.engine.KeyQuestions(id, socratic.Clarify); len(qs) > 0 {
			out = append(out, qs[0].Text)
		}
	}
	return out
}

// PersonalizedExplanation frames the static explanation of id for the
// learner's level and first application interest. It does not change the
// learner model; use Explain for that.
func (o *Orchestrator) PersonalizedExplanation(id string) string {
	level := o.model.ExperienceLevel()
	text := "Based on your " + string(level) + " level"
	if interests := o.model.Interests(); len(interests) > 0 {
		text += " and interest in " + interests[0]
	}
	text += ", let me explain " + id + " in a way that's most relevant to you."

	if body := o.graph.Explanation(id, level); body != "" {
		text += " " + body
	}
	if interests := o.model.Interests(); len(interests) > 0 {
		if app := o.graph.ApplicationExplanation(id, interests[0]); app != "" {
			text += " " + app
		}
	}
	return text
}

// Explain returns the personalized explanation of id and counts it as
// explained for the learner.
func (o *Orchestrator) Explain(id string) string {
	o.model.MarkExplained(id)
	return o.PersonalizedExplanation(id)
}

// PracticeQuestions returns questions that check understanding of id.
// Reynolds number and turbulence use their batteries, boundary conditions
// follow the flow geometry described so far, and other concepts get their
// key questions at the learner's current strategy.
func (o *Orchestrator) PracticeQuestions(id string) []string {
	var qs []socratic.Question
	switch id {
	case knowledge.ConceptReynoldsNumber:
		qs = o.engine.ReynoldsQuestions(o.model)
	case knowledge.ConceptTurbulence:
		qs = o.engine.TurbulenceQuestions(o.model)
	case knowledge.ConceptBoundaryConditions:
		qs = o.engine.BoundaryConditionQuestions(o.AnalysisType())
	default:
		qs = o.engine.KeyQuestions(id, o.engine.SelectOptimalStrategy(id, o.model))
	}
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Text)
	}
	return out
}

// LearningPath returns the concepts the learner still needs before target.
func (o *Orchestrator) LearningPath(target string) []string {
	return o.graph.LearningPath(target, o.model)
}

// ReadyForNewConcepts lists intermediate topics unlocked once the
// fundamentals are understood.
func (o *Orchestrator) ReadyForNewConcepts() []string {
	return o.model.ReadyForNewConcepts()
}

var _ knowledge.Understanding = (*learner.Model)(nil)
