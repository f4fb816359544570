package dialogue

import (
	"fmt"
	"strings"

	"github.com/cfdlab/foamtutor/internal/assess"
	"github.com/cfdlab/foamtutor/internal/extract"
)

// MissingParameter is a critical parameter still needed for a case, with
// the question to ask for it.
type MissingParameter struct {
	Name         string
	Prompt       string
	Significance string
}

// SetupChoice lists the common options for a setup decision the learner
// still has to make.
type SetupChoice struct {
	Name    string
	Options []string
}

// setupDecisions are offered in every report, in this order.
var setupDecisions = []string{"solver", "turbulence_model", "mesh_type"}

// CaseReport summarizes how close the session is to a runnable case.
type CaseReport struct {
	CaseType          string
	MissingConcepts   []string
	MissingParameters []MissingParameter
	Issues            []extract.Issue
	Choices           []SetupChoice
	Consistent        bool
	Ready             bool
}

// AnalysisType is the case type implied by the flow physics described so
// far. Sessions with no clear physics default to pipe flow.
func (o *Orchestrator) AnalysisType() string {
	return assess.AnalysisTypeFor(o.category)
}

// CaseReport checks the session against caseType. An empty caseType uses
// AnalysisType.
func (o *Orchestrator) CaseReport(caseType string) CaseReport {
	if caseType == "" {
		caseType = o.AnalysisType()
	}
	r := CaseReport{
		CaseType:   caseType,
		Consistent: extract.ValidateConsistency(o.params),
		Ready:      o.IsUserReadyForCaseGeneration(),
	}

	for _, id := range RequiredConceptsForCase(caseType) {
		if !o.model.IsUnderstood(id) {
			r.MissingConcepts = append(r.MissingConcepts, id)
		}
	}

	level := o.model.ExperienceLevel()
	for _, name := range extract.MissingCritical(o.params, caseType) {
		r.MissingParameters = append(r.MissingParameters, MissingParameter{
			Name:         name,
			Prompt:       extract.ParameterQuestion(name, level),
			Significance: extract.ParameterSignificance(name),
		})
	}

	r.Issues = extract.Review(o.params, extract.RangeCheck{}, extract.ConsistencyCheck{})

	for _, name := range setupDecisions {
		if opts := extract.ParameterOptions(name, caseType); len(opts) > 0 {
			r.Choices = append(r.Choices, SetupChoice{Name: name, Options: opts})
		}
	}
	return r
}

// Markdown renders the report, preceded by the gathered facts.
func (r CaseReport) Markdown(facts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Case Readiness: %s\n", r.CaseType)
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
	}
	list("Parameters", facts)
	list("Concepts to review", r.MissingConcepts)

	missing := make([]string, 0, len(r.MissingParameters))
	for _, p := range r.MissingParameters {
		s := fmt.Sprintf("**%s**: %s", p.Name, p.Prompt)
		if p.Significance != "" {
			s += " (" + p.Significance + ")"
		}
		missing = append(missing, s)
	}
	list("Missing parameters", missing)

	issues := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		issues = append(issues, is.String())
	}
	list("Issues", issues)

	choices := make([]string, 0, len(r.Choices))
	for _, c := range r.Choices {
		choices = append(choices, fmt.Sprintf("**%s**: %s", c.Name, strings.Join(c.Options, ", ")))
	}
	list("Setup choices", choices)

	fmt.Fprintf(&b, "\n**Consistent:** %t\n**Ready:** %t\n", r.Consistent, r.Ready)
	return b.String()
}
