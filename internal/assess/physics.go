package assess

// PhysicsCategory is the coarse kind of flow problem a learner describes.
type PhysicsCategory string

const (
	PhysicsUnknown      PhysicsCategory = ""
	PhysicsInternal     PhysicsCategory = "internal"
	PhysicsExternal     PhysicsCategory = "external"
	PhysicsHeatTransfer PhysicsCategory = "heat_transfer"
	PhysicsMultiphase   PhysicsCategory = "multiphase"
)

// Analysis types understood by the parameter extractor.
const (
	AnalysisPipeFlow     = "pipe_flow"
	AnalysisExternalFlow = "external_flow"
	AnalysisHeatTransfer = "heat_transfer"
	AnalysisMultiphase   = "multiphase"
)

type physicsRule struct {
	category PhysicsCategory
	phrases  []phrase
}

// Rules are checked in order; the first category with the most hits wins,
// so more specific physics is listed first.
var physicsRules = []physicsRule{
	{PhysicsMultiphase, compilePhrases([]string{
		"multiphase", "two-phase", "two phase", "free surface", "bubble", "bubbles", "droplet", "droplets", "vof", "wave", "waves", "sloshing",
	})},
	{PhysicsHeatTransfer, compilePhrases([]string{
		"heat transfer", "heat", "thermal", "cooling", "heating", "convection", "conduction", "heat exchanger",
	})},
	{PhysicsExternal, compilePhrases([]string{
		"external", "around", "airfoil", "wing", "car", "vehicle", "building", "drag", "lift", "cylinder", "aerodynamics",
	})},
	{PhysicsInternal, compilePhrases([]string{
		"pipe", "duct", "channel", "internal", "valve", "nozzle", "manifold",
	})},
}

// PhysicsClassifier maps text to a PhysicsCategory.
type PhysicsClassifier interface {
	ClassifyPhysics(text string) PhysicsCategory
}

// KeywordPhysics is the keyword-count PhysicsClassifier.
type KeywordPhysics struct{}

// ClassifyPhysics returns the category with the most keyword hits, or
// PhysicsUnknown when nothing matches.
func (KeywordPhysics) ClassifyPhysics(text string) PhysicsCategory {
	best, bestHits := PhysicsUnknown, 0
	for _, r := range physicsRules {
		hits := 0
		for _, p := range r.phrases {
			if p.in(text) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = r.category, hits
		}
	}
	return best
}

// AnalysisTypeFor maps a physics category to the parameter-table key used
// for missing-parameter reports. Unknown physics defaults to pipe flow.
func AnalysisTypeFor(c PhysicsCategory) string {
	switch c {
	case PhysicsExternal:
		return AnalysisExternalFlow
	case PhysicsHeatTransfer:
		return AnalysisHeatTransfer
	case PhysicsMultiphase:
		return AnalysisMultiphase
	default:
		return AnalysisPipeFlow
	}
}
