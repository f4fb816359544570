package assess

import (
	"maps"
	"slices"
	"sort"
)

// ConceptHit is one concept recognized in a learner utterance.
type ConceptHit struct {
	Concept  string
	Count    int      // distinct keywords matched
	Keywords []string // the keywords that matched, in table order
}

// ConceptClassifier maps free text to the concepts it touches on.
// Implementations must be pure: same text, same hits.
type ConceptClassifier interface {
	Name() string
	Classify(text string) []ConceptHit
}

// DefaultConceptKeywords returns the stock keyword table.
func DefaultConceptKeywords() map[string][]string {
	return map[string][]string{
		"reynolds_number":     {"reynolds", "re", "turbulent", "laminar", "transition"},
		"boundary_conditions": {"inlet", "outlet", "wall", "boundary", "dirichlet", "neumann"},
		"turbulence":          {"turbulent", "k-epsilon", "k-omega", "les", "rans", "dns"},
		"mesh_quality":        {"mesh", "elements", "skewness", "aspect ratio", "orthogonality"},
	}
}

// KeywordClassifier counts whole-word keyword mentions per concept.
type KeywordClassifier struct {
	concepts []string
	table    map[string][]phrase
}

// NewKeywordClassifier compiles table (concept ID -> keywords). Concepts are
// reported in ID order.
func NewKeywordClassifier(table map[string][]string) *KeywordClassifier {
	k := &KeywordClassifier{table: make(map[string][]phrase, len(table))}
	for concept, words := range table {
		k.table[concept] = compilePhrases(words)
	}
	k.concepts = slices.Sorted(maps.Keys(k.table))
	return k
}

// DefaultClassifier returns a KeywordClassifier over DefaultConceptKeywords.
func DefaultClassifier() *KeywordClassifier {
	return NewKeywordClassifier(DefaultConceptKeywords())
}

func (k *KeywordClassifier) Name() string { return "keyword" }

// Classify returns one hit per concept with at least one keyword present.
func (k *KeywordClassifier) Classify(text string) []ConceptHit {
	var hits []ConceptHit
	for _, concept := range k.concepts {
		var matched []string
		for _, p := range k.table[concept] {
			if p.in(text) {
				matched = append(matched, p.text)
			}
		}
		if len(matched) > 0 {
			hits = append(hits, ConceptHit{Concept: concept, Count: len(matched), Keywords: matched})
		}
	}
	return hits
}

// Concepts returns the concept IDs this classifier can recognize.
func (k *KeywordClassifier) Concepts() []string {
	return slices.Clone(k.concepts)
}

// StaticClassifier returns fixed hits regardless of input. It stands in for
// a real classifier when dialogue policy is tested on its own.
type StaticClassifier []ConceptHit

func (s StaticClassifier) Name() string { return "static" }

func (s StaticClassifier) Classify(string) []ConceptHit {
	out := slices.Clone(s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Concept < out[j].Concept })
	return out
}

// HitConfidence converts a keyword count into a confidence score:
// min(1, base + step*count).
func HitConfidence(count int, base, step float64) float64 {
	if count <= 0 {
		return 0
	}
	return min(1, base+step*float64(count))
}
