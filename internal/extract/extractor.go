package extract

import (
	"regexp"
	"sort"

	"github.com/cfdlab/foamtutor/internal/assess"
)

// Confidence assigned to each extraction layer.
const (
	ExplicitConfidence = 0.9
	ContextConfidence  = 0.5
	MentionConfidence  = 0.3
	DefaultConfidence  = 0.2
)

const (
	// A decimal with optional sign and exponent, e.g. -5, 0.025, 1.81e-5.
	numberExpr = `(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)`
	// Like numberExpr but also accepts thousands separators (200,000).
	groupedNumberExpr = `(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)`
	// The number must not continue a longer token on its left.
	lead = `(?:^|[^\w.])`
	// A unit must end at a word boundary that is not a slash, so "m" never
	// matches the start of "m/s".
	tail       = `(?:[^\pL\pN_/]|$)`
	lengthUnit = `(mm|cm|meters?|m|inch(?:es)?|in)`
)

var (
	velocityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*(m/s|meters?\s+per\s+second|km/h|mph|ft/s)` + tail),
	}

	// "pa" followed by ".s" or "·s" is a viscosity unit, not a pressure.
	pressurePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*(kpa|mpa|pascals?|pa|bar|atm|psi)(?:[^\pL\pN_.·/]|\.(?:[^sS]|$)|$)`),
	}

	temperaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*(°c|°f|kelvin|celsius|fahrenheit|k|c|f)` + `(?:[^\pL\pN_/-]|$)`),
	}

	densityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*(kg/m3|kg/m\^3|kg/m³|g/cm3)`),
	}

	viscosityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*(pa\.s|pa·s|pas|poise|centipoise|cp)` + tail),
	}

	// A bare length only counts as a diameter when a diameter or pipe
	// keyword sits next to it, and never when it is described as long.
	diameterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:diameter|pipe)\b[^\d]{0,20}?` + lead + numberExpr + `\s*` + lengthUnit + tail),
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*` + lengthUnit + `\s+(?:in\s+)?(?:diameter|pipe|bore)\b`),
	}
	notDiameter = regexp.MustCompile(`(?i)^\s*(?:long|in\s+length)\b`)

	lengthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:length|chord)\b[^\d]{0,20}?` + lead + numberExpr + `\s*` + lengthUnit + tail),
		regexp.MustCompile(`(?i)` + lead + numberExpr + `\s*` + lengthUnit + `\s+(?:long|length|chord)\b`),
	}

	reynoldsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:\breynolds(?:\s+number)?|\bre)\s*(?:of|is|=|:|≈|~|around|about|approximately)?\s*` + groupedNumberExpr),
	}
)

// Rule describes how one parameter is recognized. Each pattern must
// capture the value in group 1 and, optionally, the unit in group 2.
// A match is discarded when Reject matches the text that follows it.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Synonyms []string
	Reject   *regexp.Regexp
}

// DefaultRules returns the built-in rules in name order.
func DefaultRules() []Rule {
	rules := []Rule{
		{Name: "velocity", Patterns: velocityPatterns,
			Synonyms: []string{"velocity", "speed", "flow rate", "inlet velocity", "bulk velocity"}},
		{Name: "pressure", Patterns: pressurePatterns,
			Synonyms: []string{"pressure", "static pressure", "gauge pressure", "inlet pressure"}},
		{Name: "temperature", Patterns: temperaturePatterns,
			Synonyms: []string{"temperature", "temp", "inlet temperature", "wall temperature"}},
		{Name: "density", Patterns: densityPatterns,
			Synonyms: []string{"density", "rho", "fluid density", "specific weight"}},
		{Name: "viscosity", Patterns: viscosityPatterns,
			Synonyms: []string{"viscosity", "mu", "dynamic viscosity", "kinematic viscosity"}},
		{Name: "diameter", Patterns: diameterPatterns, Reject: notDiameter,
			Synonyms: []string{"diameter", "pipe diameter", "characteristic diameter", "hydraulic diameter"}},
		{Name: "length", Patterns: lengthPatterns,
			Synonyms: []string{"length", "characteristic length", "chord"}},
		{Name: "reynolds_number", Patterns: reynoldsPatterns,
			Synonyms: []string{"reynolds number", "reynolds"}},
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })
	return rules
}

type compiledRule struct {
	Rule
	synonyms *assess.Matcher
}

// Extractor turns free text into Parameters using a layered pipeline:
// explicit value and unit, then a bare mention, then context defaults.
// It holds no per-conversation state and is safe for concurrent use.
type Extractor struct {
	rules []compiledRule

	air, water, pipe, small, large *assess.Matcher
}

// New builds an Extractor. With no rules it uses DefaultRules.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	e := &Extractor{
		air:   assess.NewMatcher("air", "atmospheric"),
		water: assess.NewMatcher("water", "liquid"),
		pipe:  assess.NewMatcher("pipe", "pipes"),
		small: assess.NewMatcher("small"),
		large: assess.NewMatcher("large"),
	}
	for _, r := range rules {
		e.rules = append(e.rules, compiledRule{Rule: r, synonyms: assess.NewMatcher(r.Synonyms...)})
	}
	return e
}

// Names lists the parameters this extractor recognizes.
func (e *Extractor) Names() []string {
	out := make([]string, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Name
	}
	return out
}

// Extract runs every rule over text. Parameters for which no layer fires
// are omitted.
func (e *Extractor) Extract(text string) Parameters {
	out := Parameters{}
	for _, r := range e.rules {
		if p, ok := e.extractOne(r, text); ok {
			out[r.Name] = p
		}
	}
	return out
}

// ExtractOne runs the pipeline for a single named parameter.
func (e *Extractor) ExtractOne(name, text string) (Parameter, bool) {
	for _, r := range e.rules {
		if r.Name == name {
			return e.extractOne(r, text)
		}
	}
	return Parameter{}, false
}

func (e *Extractor) extractOne(r compiledRule, text string) (Parameter, bool) {
	for _, re := range r.Patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if r.Reject != nil && r.Reject.MatchString(text[loc[1]:]) {
				continue
			}
			p := Parameter{
				Name:          r.Name,
				Value:         text[loc[2]:loc[3]],
				Method:        MethodExplicit,
				Confidence:    ExplicitConfidence,
				Justification: "Extracted from explicit mention in conversation",
			}
			if len(loc) > 5 && loc[4] >= 0 {
				p.Unit = text[loc[4]:loc[5]]
			}
			return p, true
		}
	}

	var p Parameter
	found := false
	if r.synonyms.Any(text) {
		p = Parameter{
			Name:              r.Name,
			Method:            MethodInferred,
			Confidence:        MentionConfidence,
			Justification:     "Parameter mentioned but value not specified",
			NeedsConfirmation: true,
		}
		found = true
	}

	if value, unit := e.inferFromContext(r.Name, text); value != "" {
		p = Parameter{
			Name:              r.Name,
			Value:             value,
			Unit:              unit,
			Method:            MethodInferred,
			Confidence:        ContextConfidence,
			Justification:     "Inferred from context and application type",
			NeedsConfirmation: true,
		}
		found = true
	}
	return p, found
}

// Reference fluid properties near 20 °C and 1 atm.
const (
	airDensity     = "1.225"
	airViscosity   = "1.81e-5"
	waterDensity   = "998.2"
	waterViscosity = "1.002e-3"
)

func (e *Extractor) inferFromContext(name, text string) (value, unit string) {
	switch name {
	case "density":
		if e.air.Any(text) {
			return airDensity, "kg/m3"
		}
		if e.water.Any(text) {
			return waterDensity, "kg/m3"
		}
	case "viscosity":
		if e.air.Any(text) {
			return airViscosity, "Pa.s"
		}
		if e.water.Any(text) {
			return waterViscosity, "Pa.s"
		}
	case "diameter":
		if !e.pipe.Any(text) {
			return "", ""
		}
		switch {
		case e.small.Any(text):
			return "0.025", "m"
		case e.large.Any(text):
			return "0.2", "m"
		default:
			return "0.1", "m"
		}
	}
	return "", ""
}
