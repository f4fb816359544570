package assess

import "regexp"

var (
	defaultApplications = []string{"automotive", "aerospace", "hvac", "marine", "industrial"}

	confusionPhrases = compilePhrases([]string{
		"i don't understand", "i do not understand", "confused", "not sure", "don't know", "unclear",
	})

	// Two numbers joined by an arithmetic operator, e.g. "1000 * 2 * 0.1".
	mathExprRe = regexp.MustCompile(`\d+\.?\d*\s*[*/+-]\s*\d+\.?\d*`)
)

// ApplicationDetector finds application domains named in text.
type ApplicationDetector struct {
	names   []string
	phrases []phrase
}

// NewApplicationDetector builds a detector for the given domain names.
func NewApplicationDetector(names ...string) *ApplicationDetector {
	if len(names) == 0 {
		names = defaultApplications
	}
	return &ApplicationDetector{names: names, phrases: compilePhrases(names)}
}

// Detect returns the domains mentioned, in detector order.
func (d *ApplicationDetector) Detect(text string) []string {
	var out []string
	for i, p := range d.phrases {
		if p.in(text) {
			out = append(out, d.names[i])
		}
	}
	return out
}

// IsConfused reports whether text contains an explicit confusion phrase.
func IsConfused(text string) bool {
	for _, p := range confusionPhrases {
		if p.in(text) {
			return true
		}
	}
	return false
}

// HasMathExpression reports whether text contains an arithmetic expression.
func HasMathExpression(text string) bool {
	return mathExprRe.MatchString(text)
}
