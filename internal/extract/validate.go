package extract

import (
	"fmt"
	"math"
	"strings"
)

type bounds struct {
	min, max     float64
	exclusiveMin bool
}

func (b bounds) contains(v float64) bool {
	if b.exclusiveMin {
		if v <= b.min {
			return false
		}
	} else if v < b.min {
		return false
	}
	return v <= b.max
}

// Ranges are checked against the number as written, before unit conversion.
var parameterRanges = map[string]bounds{
	"velocity":    {min: 0, max: 1000, exclusiveMin: true},
	"pressure":    {min: 0, max: 1e8},
	"temperature": {min: 0, max: 5000},
	"density":     {min: 0, max: 20000, exclusiveMin: true},
	"viscosity":   {min: 0, max: 1, exclusiveMin: true},
	"diameter":    {min: 0, max: 100, exclusiveMin: true},
}

// ValidateRange reports whether value is a plausible number for the named
// parameter. Non-numeric, NaN and infinite values are never valid; names
// without registered bounds accept any finite number.
func ValidateRange(name, value string) bool {
	v, ok := parseNumber(value)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	b, ok := parameterRanges[name]
	if !ok {
		return true
	}
	return b.contains(v)
}

const (
	reynoldsTolerance = 0.1
	nearZero          = 1e-12
)

// ValidateConsistency recomputes Re = ρVD/μ and compares it with a stated
// Reynolds number. It returns false only when every input parses and the
// two disagree by 10% or more; incomplete or unparseable inputs cannot
// confirm an inconsistency and return true.
func ValidateConsistency(ps Parameters) bool {
	ok, _, _ := reynoldsAgreement(ps)
	return ok
}

// reynoldsAgreement returns (consistent, computed, stated). computed and
// stated are zero when the check could not run.
func reynoldsAgreement(ps Parameters) (bool, float64, float64) {
	var vals [5]float64
	for i, name := range []string{"velocity", "density", "viscosity", "diameter", "reynolds_number"} {
		p, ok := ps[name]
		if !ok || !p.HasValue() {
			return true, 0, 0
		}
		v, ok := p.SIValue()
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return true, 0, 0
		}
		vals[i] = v
	}
	vel, rho, mu, d, stated := vals[0], vals[1], vals[2], vals[3], vals[4]
	if math.Abs(mu) < nearZero || math.Abs(stated) < nearZero {
		return true, 0, 0
	}
	computed := rho * vel * d / mu
	return math.Abs(computed-stated)/math.Abs(stated) < reynoldsTolerance, computed, stated
}

// criticalParameters lists what each analysis type needs before a case can
// be set up.
var criticalParameters = map[string][]string{
	"pipe_flow":     {"velocity", "diameter", "density", "viscosity"},
	"external_flow": {"velocity", "characteristic_length", "density", "viscosity"},
	"heat_transfer": {"velocity", "temperature", "thermal_conductivity", "specific_heat"},
	"multiphase":    {"phase1_density", "phase2_density", "surface_tension", "contact_angle"},
}

// CriticalParameters returns the required parameters for analysisType, or
// nil when the type is unknown.
func CriticalParameters(analysisType string) []string {
	return append([]string(nil), criticalParameters[analysisType]...)
}

// MissingCritical returns the required parameters for analysisType that
// have no value in ps, in table order. characteristic_length is satisfied
// by either a length or a diameter.
func MissingCritical(ps Parameters, analysisType string) []string {
	var missing []string
	for _, name := range criticalParameters[analysisType] {
		if !hasValue(ps, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func hasValue(ps Parameters, name string) bool {
	if name == "characteristic_length" {
		return hasValue(ps, "length") || hasValue(ps, "diameter")
	}
	p, ok := ps[name]
	return ok && p.HasValue()
}

// Issue is one problem found while reviewing extracted parameters.
type Issue struct {
	Check     string
	Parameter string
	Message   string
}

func (i Issue) String() string {
	if i.Parameter == "" {
		return fmt.Sprintf("%s: %s", i.Check, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Check, i.Parameter, i.Message)
}

// Check inspects a parameter set and reports any issues it finds.
// Implementations are stateless.
type Check interface {
	// Name is a short identifier used in Issue.Check, e.g. "range".
	Name() string
	Check(ps Parameters) []Issue
}

// RangeCheck flags values outside their plausible bounds.
type RangeCheck struct{}

func (RangeCheck) Name() string { return "range" }

func (c RangeCheck) Check(ps Parameters) []Issue {
	var out []Issue
	for _, name := range ps.Names() {
		p := ps[name]
		if !p.HasValue() || ValidateRange(name, p.Value) {
			continue
		}
		out = append(out, Issue{
			Check:     c.Name(),
			Parameter: name,
			Message:   fmt.Sprintf("value %q is outside the expected range", strings.TrimSpace(p.Value+" "+p.Unit)),
		})
	}
	return out
}

// ConsistencyCheck flags a stated Reynolds number that disagrees with the
// other flow parameters.
type ConsistencyCheck struct{}

func (ConsistencyCheck) Name() string { return "consistency" }

func (c ConsistencyCheck) Check(ps Parameters) []Issue {
	ok, computed, stated := reynoldsAgreement(ps)
	if ok {
		return nil
	}
	return []Issue{{
		Check:     c.Name(),
		Parameter: "reynolds_number",
		Message:   fmt.Sprintf("stated Re %.4g differs from computed ρVD/μ = %.4g by more than 10%%", stated, computed),
	}}
}

// MissingCheck flags critical parameters that are still unknown for an
// analysis type.
type MissingCheck struct {
	AnalysisType string
}

func (MissingCheck) Name() string { return "missing" }

func (c MissingCheck) Check(ps Parameters) []Issue {
	var out []Issue
	for _, name := range MissingCritical(ps, c.AnalysisType) {
		out = append(out, Issue{
			Check:     c.Name(),
			Parameter: name,
			Message:   "required for " + c.AnalysisType + " but not yet provided",
		})
	}
	return out
}

// DefaultChecks returns the standard review chain for analysisType.
func DefaultChecks(analysisType string) []Check {
	return []Check{RangeCheck{}, ConsistencyCheck{}, MissingCheck{AnalysisType: analysisType}}
}

// Review runs every check in order and concatenates their issues.
func Review(ps Parameters, checks ...Check) []Issue {
	var out []Issue
	for _, c := range checks {
		out = append(out, c.Check(ps)...)
	}
	return out
}
