package extract

import (
	"regexp"
	"strings"

	"github.com/cfdlab/foamtutor/internal/knowledge"
)

var (
	numericValueRe = regexp.MustCompile(`\d+\.?\d*(?:[eE][+-]?\d+)?`)
	unitTokenRe    = regexp.MustCompile(`(?i)\b(m/s|pa|k|kg/m3|pas|m|mm|cm|bar|atm|psi|celsius|kelvin)\b`)
)

// NumericValues returns every number in text, in order of appearance.
func NumericValues(text string) []string {
	return numericValueRe.FindAllString(text, -1)
}

// Units returns every recognized unit token in text.
func Units(text string) []string {
	return unitTokenRe.FindAllString(text, -1)
}

// SuggestDefault proposes a typical value for a parameter in the given
// application context, or "" when there is no sensible default.
func SuggestDefault(name, context string) string {
	ctx := strings.ToLower(context)
	switch name {
	case "velocity":
		switch {
		case strings.Contains(ctx, "pipe"):
			return "2.0"
		case strings.Contains(ctx, "external"):
			return "20.0"
		}
		return "1.0"
	case "temperature":
		return "293.15"
	case "pressure":
		return "101325"
	}
	return ""
}

var defaultUnits = map[string]string{
	"velocity":    "m/s",
	"temperature": "K",
	"pressure":    "Pa",
}

// FillDefaults adds a default-method entry for every named parameter that
// has no value yet and has a suggested default. Existing values are kept.
// It returns the names it filled.
func FillDefaults(ps Parameters, context string, names ...string) []string {
	var filled []string
	for _, name := range names {
		if hasValue(ps, name) {
			continue
		}
		v := SuggestDefault(name, context)
		if v == "" {
			continue
		}
		ps[name] = Parameter{
			Name:              name,
			Value:             v,
			Unit:              defaultUnits[name],
			Method:            MethodDefault,
			Confidence:        DefaultConfidence,
			Justification:     "Typical value for this kind of flow",
			NeedsConfirmation: true,
		}
		filled = append(filled, name)
	}
	return filled
}

// ParameterQuestion asks the learner for a parameter, phrased for their
// experience level.
func ParameterQuestion(name string, level knowledge.Level) string {
	switch name {
	case "velocity":
		if level == knowledge.LevelBeginner {
			return "What is the flow speed? You can specify it in m/s (meters per second)."
		}
		return "What is the characteristic velocity for your flow analysis?"
	case "reynolds_number":
		return "Do you know the Reynolds number for your flow, or would you like me to calculate it from the flow parameters?"
	case "boundary_conditions":
		return "What type of boundary conditions do you need? For example: inlet velocity, outlet pressure, wall conditions?"
	}
	return "Can you specify the " + name + " for your CFD case?"
}

// ParameterOptions lists common choices for a setup parameter.
func ParameterOptions(name, context string) []string {
	ctx := strings.ToLower(context)
	switch name {
	case "turbulence_model":
		return []string{"k-epsilon", "k-omega SST", "Spalart-Allmaras", "LES"}
	case "solver":
		switch {
		case strings.Contains(ctx, "multiphase"):
			return []string{"interFoam", "multiphaseEulerFoam", "twoPhaseEulerFoam"}
		case strings.Contains(ctx, "heat"):
			return []string{"chtMultiRegionFoam", "buoyantSimpleFoam", "buoyantPimpleFoam"}
		}
		return []string{"simpleFoam", "pimpleFoam", "pisoFoam"}
	case "mesh_type":
		return []string{"structured", "unstructured", "cartesian", "polyhedral"}
	}
	return nil
}

// ParameterSignificance explains why a parameter matters to the setup.
func ParameterSignificance(name string) string {
	switch name {
	case "reynolds_number":
		return "Reynolds number determines whether your flow is laminar (Re < 2300) or turbulent (Re > 4000). " +
			"This affects which turbulence model to use and how to set up your mesh near walls."
	case "mesh_quality":
		return "Mesh quality directly impacts solution accuracy and convergence. Poor quality meshes " +
			"can lead to numerical errors and solver instability."
	case "time_step":
		return "Time step size affects solution stability and accuracy. It should satisfy the CFL condition " +
			"for explicit schemes and be small enough to capture the physics of interest."
	}
	return "The " + name + " is important for setting up your CFD simulation correctly."
}
