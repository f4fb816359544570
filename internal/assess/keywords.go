package assess

import (
	"regexp"
	"strings"
)

// phrase is a compiled whole-word, case-insensitive matcher for one keyword
// or multi-word phrase.
type phrase struct {
	text string
	re   *regexp.Regexp
}

func compilePhrase(text string) phrase {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return phrase{
		text: text,
		re:   regexp.MustCompile(`(?i)(?:^|[^\pL\pN_])` + strings.Join(words, `\s+`) + `(?:$|[^\pL\pN_])`),
	}
}

func compilePhrases(texts []string) []phrase {
	out := make([]phrase, len(texts))
	for i, t := range texts {
		out[i] = compilePhrase(t)
	}
	return out
}

func (p phrase) in(text string) bool {
	return p.re.MatchString(text)
}

// ContainsPhrase reports whether text mentions words as whole words,
// ignoring case and runs of whitespace.
func ContainsPhrase(text, words string) bool {
	if strings.TrimSpace(words) == "" {
		return false
	}
	return compilePhrase(words).in(text)
}

// Matcher tests text against a fixed set of whole-word phrases.
type Matcher struct {
	phrases []phrase
}

// NewMatcher compiles phrases once for repeated use.
func NewMatcher(phrases ...string) *Matcher {
	return &Matcher{phrases: compilePhrases(phrases)}
}

// Any reports whether text mentions at least one phrase.
func (m *Matcher) Any(text string) bool {
	for _, p := range m.phrases {
		if p.in(text) {
			return true
		}
	}
	return false
}

// Matches returns the phrases mentioned in text, in declaration order.
func (m *Matcher) Matches(text string) []string {
	var out []string
	for _, p := range m.phrases {
		if p.in(text) {
			out = append(out, p.text)
		}
	}
	return out
}
