package extract

import (
	"sort"
	"strconv"
	"strings"
)

// Method records how a parameter value was obtained.
type Method string

const (
	MethodExplicit Method = "explicit"
	MethodInferred Method = "inferred"
	MethodDefault  Method = "default"
)

// Parameter is one engineering quantity recovered from conversation.
type Parameter struct {
	Name              string
	Value             string
	Unit              string
	Method            Method
	Confidence        float64
	Justification     string
	NeedsConfirmation bool
}

// HasValue reports whether a value was recovered, as opposed to a bare
// mention awaiting confirmation.
func (p Parameter) HasValue() bool {
	return strings.TrimSpace(p.Value) != ""
}

// Float parses Value, accepting thousands separators.
func (p Parameter) Float() (float64, bool) {
	return parseNumber(p.Value)
}

// SIValue returns the numeric value converted to SI using Unit. Unknown or
// empty units leave the number unchanged.
func (p Parameter) SIValue() (float64, bool) {
	v, ok := p.Float()
	if !ok {
		return 0, false
	}
	return toSI(v, p.Unit), true
}

// Parameters maps parameter name to its latest extraction.
type Parameters map[string]Parameter

// Names returns the parameter names in sorted order.
func (ps Parameters) Names() []string {
	names := make([]string, 0, len(ps))
	for n := range ps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Merge copies every entry of other into ps; later entries win.
func (ps Parameters) Merge(other Parameters) {
	for k, v := range other {
		ps[k] = v
	}
}

// Flatten renders valued parameters as "name = value", sorted by name.
func Flatten(ps Parameters) []string {
	var out []string
	for _, n := range ps.Names() {
		if p := ps[n]; p.HasValue() {
			out = append(out, n+" = "+p.Value)
		}
	}
	return out
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// unitScale converts a unit to SI by multiplication.
var unitScale = map[string]float64{
	"m/s": 1, "meters per second": 1, "meter per second": 1, "km/h": 1 / 3.6, "mph": 0.44704, "ft/s": 0.3048,
	"pa": 1, "pascal": 1, "pascals": 1, "kpa": 1e3, "mpa": 1e6, "bar": 1e5, "atm": 101325, "psi": 6894.757,
	"kg/m3": 1, "kg/m^3": 1, "kg/m³": 1, "g/cm3": 1000,
	"pa.s": 1, "pa s": 1, "pas": 1, "poise": 0.1, "centipoise": 1e-3, "cp": 1e-3,
	"m": 1, "meter": 1, "meters": 1, "cm": 0.01, "mm": 1e-3, "in": 0.0254, "inch": 0.0254, "inches": 0.0254, "km": 1e3,
}

func toSI(v float64, unit string) float64 {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "c", "°c", "celsius":
		return v + 273.15
	case "f", "°f", "fahrenheit":
		return (v-32)*5/9 + 273.15
	}
	if scale, ok := unitScale[u]; ok {
		return v * scale
	}
	return v
}
