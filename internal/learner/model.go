package learner

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/cfdlab/foamtutor/internal/knowledge"
)

// ConceptRecord is the learner's demonstrated understanding of one concept.
type ConceptRecord struct {
	ConceptID       string
	Understands     bool
	Confidence      float64
	LastAssessedAt  time.Time
	EvidenceFor     []string
	EvidenceAgainst []string
	TimesExplained  int
}

// Assessment describes how a single update moved a concept record.
type Assessment struct {
	ConceptID       string
	FromUnderstands bool
	ToUnderstands   bool
	FromConfidence  float64
	ToConfidence    float64
	At              time.Time
}

// Changed reports whether understanding flipped.
func (a Assessment) Changed() bool {
	return a.FromUnderstands != a.ToUnderstands
}

// Model is the per-session learner model. It is not safe for concurrent
// use; each session owns its own Model.
type Model struct {
	records  map[string]*ConceptRecord
	confused map[string]bool
	strong   map[string]bool
	overall  float64

	level         knowledge.Level
	style         LearningStyle
	complexity    string
	preferences   map[string]string
	interests     []string
	asked         int
	answeredRight int

	core       []string
	advanced   map[string][]string
	thresholds Thresholds
	now        func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithThresholds overrides the default tuning constants.
func WithThresholds(t Thresholds) Option {
	return func(m *Model) { m.thresholds = t }
}

// WithClock sets the time source used to stamp assessments.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCoreConcepts replaces the priority-ordered core concept list.
func WithCoreConcepts(ids ...string) Option {
	return func(m *Model) { m.core = slices.Clone(ids) }
}

// WithAdvancedRules replaces the advanced-topic readiness rules.
func WithAdvancedRules(rules map[string][]string) Option {
	return func(m *Model) { m.advanced = maps.Clone(rules) }
}

// New returns a beginner learner model with default preferences.
func New(opts ...Option) *Model {
	m := &Model{
		records:     make(map[string]*ConceptRecord),
		confused:    make(map[string]bool),
		strong:      make(map[string]bool),
		level:       knowledge.LevelBeginner,
		style:       StyleAnalytical,
		complexity:  ComplexityBasic,
		preferences: defaultPreferences(),
		core:        DefaultCoreConcepts(),
		advanced:    DefaultAdvancedRules(),
		thresholds:  DefaultThresholds(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UpdateConceptUnderstanding overwrites the record for conceptID. The
// confidence is clamped to [0,1], the record is stamped, confused/strong
// membership is re-derived and the overall confidence recomputed.
func (m *Model) UpdateConceptUnderstanding(conceptID string, understands bool, confidence float64) Assessment {
	rec := m.record(conceptID)
	a := Assessment{
		ConceptID:       conceptID,
		FromUnderstands: rec.Understands,
		FromConfidence:  rec.Confidence,
	}

	rec.Understands = understands
	rec.Confidence = clamp01(confidence)
	rec.LastAssessedAt = m.now()

	delete(m.confused, conceptID)
	delete(m.strong, conceptID)
	switch {
	case rec.Understands && rec.Confidence > m.thresholds.Strong:
		m.strong[conceptID] = true
	case !rec.Understands || rec.Confidence < m.thresholds.Confused:
		m.confused[conceptID] = true
	}
	m.recomputeOverall()

	a.ToUnderstands = rec.Understands
	a.ToConfidence = rec.Confidence
	a.At = rec.LastAssessedAt
	return a
}

// RecordQuestionResponse grades an answer about conceptID: confidence moves
// up by CorrectStep or down by IncorrectStep, and the concept counts as
// understood once confidence exceeds the Understood threshold.
func (m *Model) RecordQuestionResponse(conceptID string, correct bool) Assessment {
	m.asked++
	next := m.Confidence(conceptID)
	if correct {
		m.answeredRight++
		next += m.thresholds.CorrectStep
	} else {
		next -= m.thresholds.IncorrectStep
	}
	next = clamp01(next)
	return m.UpdateConceptUnderstanding(conceptID, next > m.thresholds.Understood, next)
}

// record returns the record for id, creating it on first use.
func (m *Model) record(id string) *ConceptRecord {
	rec, ok := m.records[id]
	if !ok {
		rec = &ConceptRecord{ConceptID: id}
		m.records[id] = rec
	}
	return rec
}

func (m *Model) recomputeOverall() {
	if len(m.records) == 0 {
		m.overall = 0
		return
	}
	var sum float64
	for _, rec := range m.records {
		sum += rec.Confidence
	}
	m.overall = sum / float64(len(m.records))
}

// AddEvidence attaches a learner utterance supporting or contradicting
// understanding of conceptID. Untracked concepts are ignored.
func (m *Model) AddEvidence(conceptID, text string, supports bool) bool {
	rec, ok := m.records[conceptID]
	if !ok {
		return false
	}
	if supports {
		rec.EvidenceFor = append(rec.EvidenceFor, text)
	} else {
		rec.EvidenceAgainst = append(rec.EvidenceAgainst, text)
	}
	return true
}

// MarkExplained counts an explanation given for a tracked concept.
func (m *Model) MarkExplained(conceptID string) bool {
	rec, ok := m.records[conceptID]
	if !ok {
		return false
	}
	rec.TimesExplained++
	return true
}

// Record returns a copy of the record for conceptID.
func (m *Model) Record(conceptID string) (ConceptRecord, bool) {
	rec, ok := m.records[conceptID]
	if !ok {
		return ConceptRecord{}, false
	}
	out := *rec
	out.EvidenceFor = slices.Clone(rec.EvidenceFor)
	out.EvidenceAgainst = slices.Clone(rec.EvidenceAgainst)
	return out, true
}

// Confidence returns the confidence for conceptID, 0 if never assessed.
func (m *Model) Confidence(conceptID string) float64 {
	if rec, ok := m.records[conceptID]; ok {
		return rec.Confidence
	}
	return 0
}

// IsUnderstood reports whether conceptID is currently understood.
func (m *Model) IsUnderstood(conceptID string) bool {
	rec, ok := m.records[conceptID]
	return ok && rec.Understands
}

// UnderstoodConcepts returns the understood concept IDs, sorted.
func (m *Model) UnderstoodConcepts() []string {
	var out []string
	for id, rec := range m.records {
		if rec.Understands {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ConfusedConcepts returns the concepts below the confusion threshold or
// not understood, sorted.
func (m *Model) ConfusedConcepts() []string {
	return sortedKeys(m.confused)
}

// StrongConcepts returns the understood concepts above the strong
// threshold, sorted.
func (m *Model) StrongConcepts() []string {
	return sortedKeys(m.strong)
}

// OverallConfidence is the mean confidence over every tracked concept, or 0
// when nothing has been tracked.
func (m *Model) OverallConfidence() float64 {
	return m.overall
}

// TrackedConcepts returns how many concepts have a record.
func (m *Model) TrackedConcepts() int {
	return len(m.records)
}

// IdentifyKnowledgeGaps returns the core concepts not yet understood, in
// priority order.
func (m *Model) IdentifyKnowledgeGaps() []string {
	var gaps []string
	for _, id := range m.core {
		if !m.IsUnderstood(id) {
			gaps = append(gaps, id)
		}
	}
	return gaps
}

// CoreConcepts returns the priority-ordered core concept list.
func (m *Model) CoreConcepts() []string {
	return slices.Clone(m.core)
}

// ReadyForNewConcepts suggests the next intermediate topics once the
// Reynolds number and boundary conditions are both understood.
func (m *Model) ReadyForNewConcepts() []string {
	if !m.IsUnderstood("reynolds_number") || !m.IsUnderstood("boundary_conditions") {
		return nil
	}
	var ready []string
	for _, id := range []string{"turbulence_modeling", "mesh_refinement"} {
		if !m.IsUnderstood(id) {
			ready = append(ready, id)
		}
	}
	return ready
}

// IsReadyForAdvancedTopic applies the topic's readiness rule, or requires
// confidence above the Advanced threshold for topics without one.
func (m *Model) IsReadyForAdvancedTopic(topicID string) bool {
	if needs, ok := m.advanced[topicID]; ok {
		for _, id := range needs {
			if !m.IsUnderstood(id) {
				return false
			}
		}
		return true
	}
	return m.Confidence(topicID) > m.thresholds.Advanced
}

// QuestionsAsked returns how many graded answers were recorded.
func (m *Model) QuestionsAsked() int { return m.asked }

// ResponseAccuracy is the fraction of graded answers that were correct.
func (m *Model) ResponseAccuracy() float64 {
	if m.asked == 0 {
		return 0
	}
	return float64(m.answeredRight) / float64(m.asked)
}

// Thresholds returns the tuning in use.
func (m *Model) Thresholds() Thresholds { return m.thresholds }

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
