package knowledge

import (
	"slices"
	"strings"
)

// Level is the learner's self-reported or inferred experience level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

// AllLevels returns the experience levels in ascending order.
func AllLevels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelExpert}
}

// ParseLevel normalizes s into a Level. Unknown values report false.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBeginner:
		return LevelBeginner, true
	case LevelIntermediate:
		return LevelIntermediate, true
	case LevelExpert:
		return LevelExpert, true
	}
	return "", false
}

// Concept is a discrete unit of CFD knowledge. Concepts are immutable once
// registered in a Graph; accessors hand out copies.
type Concept struct {
	ID                   string
	Name                 string
	Description          string
	Prerequisites        []string
	ComplexityLevel      int // 1 (fundamental) .. 5 (specialist)
	Applications         []string
	CommonMisconceptions []string
	KeyQuestions         []string
}

// MinComplexity and MaxComplexity bound Concept.ComplexityLevel.
const (
	MinComplexity = 1
	MaxComplexity = 5
)

// IsFundamental reports whether the concept is taught as groundwork.
func (c Concept) IsFundamental() bool {
	return c.ComplexityLevel <= 2
}

// HasPrerequisite reports whether id is a direct prerequisite of c.
func (c Concept) HasPrerequisite(id string) bool {
	return slices.Contains(c.Prerequisites, id)
}

func (c Concept) clone() Concept {
	c.Prerequisites = dedupe(c.Prerequisites)
	c.Applications = slices.Clone(c.Applications)
	c.CommonMisconceptions = slices.Clone(c.CommonMisconceptions)
	c.KeyQuestions = slices.Clone(c.KeyQuestions)
	return c
}

// dedupe returns a copy of ids with duplicates removed, order preserved.
func dedupe(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Understanding is the read-only view of a learner that graph queries need.
type Understanding interface {
	IsUnderstood(conceptID string) bool
}

// UnderstoodSet adapts a plain set to Understanding.
type UnderstoodSet map[string]bool

func (s UnderstoodSet) IsUnderstood(id string) bool { return s[id] }

// understandsNothing is used when a caller passes a nil Understanding.
type understandsNothing struct{}

func (understandsNothing) IsUnderstood(string) bool { return false }

func orNothing(u Understanding) Understanding {
	if u == nil {
		return understandsNothing{}
	}
	return u
}
