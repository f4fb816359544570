// Package dialogue runs the tutoring conversation: each learner utterance
// updates the learner model and extracted parameters, and produces the next
// guiding question.
package dialogue

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/assess"
	"github.com/cfdlab/foamtutor/internal/extract"
	"github.com/cfdlab/foamtutor/internal/journal"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/learner"
	"github.com/cfdlab/foamtutor/internal/socratic"
)

// Keyword hits map to confidence as base + step*count, capped at 1.
const (
	hitBase = 0.1
	hitStep = 0.2

	// understandHits is the number of distinct keywords that shows
	// understanding rather than a passing mention.
	understandHits = 2

	// confusedConfidence is assigned to the current topic when the learner
	// says they are confused.
	confusedConfidence = 0.2

	// detailedLength is the response length above which the learner is
	// taken to prefer detailed explanations.
	detailedLength = 100

	summaryTurns = 4
)

const (
	transitionPrompt = "Based on our discussion, I think you're ready to start creating an OpenFOAM case. " +
		"What type of flow problem would you like to analyze?"
	openPrompt = "What aspect of CFD would you like to explore further?"
)

// Orchestrator owns one tutoring session. The knowledge graph is shared and
// read-only; everything else is private to the session. It is not safe for
// concurrent use; hosts serialize calls per session.
type Orchestrator struct {
	graph      *knowledge.Graph
	model      *learner.Model
	engine     *socratic.Engine
	extractor  *extract.Extractor
	classifier assess.ConceptClassifier
	physics    assess.PhysicsClassifier
	apps       *assess.ApplicationDetector
	recorder   journal.Recorder
	log        *zap.Logger
	sessionID  string

	learnerOpts []learner.Option
	engineOpts  []socratic.Option
	readiness   []string
	now         func() time.Time

	history      []string
	facts        []string
	params       extract.Parameters
	context      map[string]string
	currentTopic string
	lastQuestion *socratic.Question
	category     assess.PhysicsCategory
	turns        int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClassifier replaces the keyword concept classifier.
func WithClassifier(c assess.ConceptClassifier) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithPhysicsClassifier replaces the flow-category classifier.
func WithPhysicsClassifier(p assess.PhysicsClassifier) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.physics = p
		}
	}
}

// WithPicker sets the template selection source for generated questions.
func WithPicker(p socratic.Picker) Option {
	return func(o *Orchestrator) { o.engineOpts = append(o.engineOpts, socratic.WithPicker(p)) }
}

// WithBands sets the confidence bands for strategy selection.
func WithBands(b socratic.Bands) Option {
	return func(o *Orchestrator) { o.engineOpts = append(o.engineOpts, socratic.WithBands(b)) }
}

// WithExtractor replaces the parameter extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.extractor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRecorder journals every turn. Recorder failures are logged and never
// interrupt the conversation.
func WithRecorder(r journal.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithThresholds overrides the learner model tuning.
func WithThresholds(t learner.Thresholds) Option {
	return func(o *Orchestrator) { o.learnerOpts = append(o.learnerOpts, learner.WithThresholds(t)) }
}

// WithCoreConcepts replaces the priority-ordered core concepts.
func WithCoreConcepts(ids ...string) Option {
	return func(o *Orchestrator) { o.learnerOpts = append(o.learnerOpts, learner.WithCoreConcepts(ids...)) }
}

// WithReadinessConcepts replaces the concepts that must be understood
// before case generation.
func WithReadinessConcepts(ids ...string) Option {
	return func(o *Orchestrator) { o.readiness = slices.Clone(ids) }
}

// WithSessionID sets the id used in journal events and logs.
func WithSessionID(id string) Option {
	return func(o *Orchestrator) { o.sessionID = id }
}

// WithClock sets the time source for the learner model and journal.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
			o.learnerOpts = append(o.learnerOpts, learner.WithClock(now))
		}
	}
}

// New starts a session over graph.
func New(graph *knowledge.Graph, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		graph:      graph,
		extractor:  extract.New(),
		classifier: assess.DefaultClassifier(),
		physics:    assess.KeywordPhysics{},
		apps:       assess.NewApplicationDetector(),
		recorder:   journal.Nop{},
		log:        zap.NewNop(),
		readiness:  []string{knowledge.ConceptReynoldsNumber, knowledge.ConceptBoundaryConditions},
		now:        time.Now,
		params:     extract.Parameters{},
		context:    map[string]string{},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.model = learner.New(o.learnerOpts...)
	o.engine = socratic.New(graph, o.engineOpts...)
	o.log = o.log.With(zap.String("session", o.sessionID))
	return o
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	Reply       string
	Question    *socratic.Question
	Assessments []learner.Assessment
	Parameters  extract.Parameters
	Confused    bool
	Ready       bool
}

// ProcessUserInput handles one learner utterance and returns the next
// question. It always returns a non-empty string.
func (o *Orchestrator) ProcessUserInput(text string) string {
	return o.Turn(context.Background(), text).Reply
}

// Turn is ProcessUserInput with the full turn result. ctx only bounds the
// journal write.
func (o *Orchestrator) Turn(ctx context.Context, text string) TurnResult {
	o.turns++
	o.history = append(o.history, "User: "+text)

	res := TurnResult{}
	res.Assessments = o.assessConcepts(text)

	if assess.IsConfused(text) && o.currentTopic != "" {
		a := o.model.UpdateConceptUnderstanding(o.currentTopic, false, confusedConfidence)
		o.model.AddEvidence(o.currentTopic, text, false)
		res.Assessments = append(res.Assessments, a)
		res.Confused = true
		o.log.Debug("learner confused", zap.String("topic", o.currentTopic))
	}

	o.updatePreferences(text)

	res.Parameters = o.extractor.Extract(text)
	o.facts = append(o.facts, extract.Flatten(res.Parameters)...)
	o.mergeParameters(res.Parameters)
	if c := o.physics.ClassifyPhysics(text); c != assess.PhysicsUnknown {
		o.category = c
	}

	res.Reply = o.generateNextQuestion(text)
	res.Question = o.lastQuestion
	res.Ready = o.IsUserReadyForCaseGeneration()
	o.history = append(o.history, "Assistant: "+res.Reply)

	o.record(ctx, text, res)
	return res
}

func (o *Orchestrator) assessConcepts(text string) []learner.Assessment {
	var out []learner.Assessment
	for _, hit := range o.classifier.Classify(text) {
		if hit.Count <= 0 {
			continue
		}
		understands := hit.Count >= understandHits
		a := o.model.UpdateConceptUnderstanding(hit.Concept, understands,
			assess.HitConfidence(hit.Count, hitBase, hitStep))
		o.model.AddEvidence(hit.Concept, strings.Join(hit.Keywords, ", "), understands)
		out = append(out, a)
		o.log.Debug("concept assessed",
			zap.String("concept", hit.Concept),
			zap.Int("hits", hit.Count),
			zap.Float64("confidence", a.ToConfidence),
			zap.Bool("understands", a.ToUnderstands))
	}
	return out
}

func (o *Orchestrator) updatePreferences(text string) {
	if len(text) > detailedLength {
		o.model.SetPreference(learner.PrefExplanationDepth, "detailed")
	}
	if assess.HasMathExpression(text) {
		o.model.SetPreference(learner.PrefMathComplexity, "intermediate")
	}
	for _, app := range o.apps.Detect(text) {
		o.model.AddInterest(app)
	}
}

// mergeParameters folds a turn's extraction into the session map. A bare
// mention never replaces a value already known.
func (o *Orchestrator) mergeParameters(ps extract.Parameters) {
	for name, p := range ps {
		if prev, ok := o.params[name]; ok && prev.HasValue() && !p.HasValue() {
			continue
		}
		o.params[name] = p
	}
}

func (o *Orchestrator) generateNextQuestion(utterance string) string {
	o.lastQuestion = nil

	if gaps := o.model.IdentifyKnowledgeGaps(); len(gaps) > 0 {
		target := gaps[0]
		strategy := o.engine.SelectOptimalStrategy(target, o.model)
		q := o.engine.Generate(strategy, target, socratic.Context{
			Summary:       o.ConversationSummary(),
			LastUtterance: utterance,
			Parameter:     o.context["parameter"],
			Application:   o.application(),
		})
		o.currentTopic = target
		o.lastQuestion = &q
		return q.Text
	}

	if o.IsUserReadyForCaseGeneration() {
		return transitionPrompt
	}
	return openPrompt
}

func (o *Orchestrator) application() string {
	if app := o.context["application"]; app != "" {
		return app
	}
	if interests := o.model.Interests(); len(interests) > 0 {
		return interests[0]
	}
	return ""
}

func (o *Orchestrator) record(ctx context.Context, input string, res TurnResult) {
	e := journal.TurnEvent{
		Timestamp:         o.now(),
		SessionID:         o.sessionID,
		Turn:              o.turns,
		Input:             input,
		Reply:             res.Reply,
		OverallConfidence: o.model.OverallConfidence(),
		Ready:             res.Ready,
		Parameters:        extract.Flatten(res.Parameters),
	}
	if res.Question != nil {
		e.Topic = res.Question.TargetConcept
		e.Strategy = res.Question.Strategy.String()
	}
	if err := o.recorder.RecordTurn(ctx, e); err != nil {
		o.log.Warn("journal turn failed", zap.Int("turn", o.turns), zap.Error(err))
	}
}

// Open records the session start and returns an opening question without
// consuming a learner turn.
func (o *Orchestrator) Open(ctx context.Context) string {
	if err := o.recorder.RecordSession(ctx, journal.SessionEvent{
		Timestamp: o.now(),
		SessionID: o.sessionID,
		Action:    journal.SessionStart,
		Level:     string(o.model.ExperienceLevel()),
	}); err != nil {
		o.log.Warn("journal session start failed", zap.Error(err))
	}
	reply := o.generateNextQuestion("")
	o.history = append(o.history, "Assistant: "+reply)
	return reply
}

// Close records the session end.
func (o *Orchestrator) Close(ctx context.Context) {
	if err := o.recorder.RecordSession(ctx, journal.SessionEvent{
		Timestamp:         o.now(),
		SessionID:         o.sessionID,
		Action:            journal.SessionEnd,
		Level:             string(o.model.ExperienceLevel()),
		Turns:             o.turns,
		OverallConfidence: o.model.OverallConfidence(),
	}); err != nil {
		o.log.Warn("journal session end failed", zap.Error(err))
	}
}

// SetUserExperienceLevel changes the learner's level. Unknown levels are
// ignored and reported as false.
func (o *Orchestrator) SetUserExperienceLevel(level string) bool {
	l, ok := knowledge.ParseLevel(level)
	if !ok {
		o.log.Warn("unknown experience level", zap.String("level", level))
		return false
	}
	o.model.SetExperienceLevel(l)
	return true
}

// RecordAnswer grades the learner's answer to the current topic.
func (o *Orchestrator) RecordAnswer(correct bool) (learner.Assessment, bool) {
	if o.currentTopic == "" {
		return learner.Assessment{}, false
	}
	return o.model.RecordQuestionResponse(o.currentTopic, correct), true
}

// QuestionEffective reports whether response engaged with the last
// question. With no outstanding question it returns false.
func (o *Orchestrator) QuestionEffective(response string) bool {
	if o.lastQuestion == nil {
		return false
	}
	return socratic.ValidateEffectiveness(*o.lastQuestion, response)
}

// UpdateContext sets a conversation context value. "parameter" and
// "application" feed question templates.
func (o *Orchestrator) UpdateContext(key, value string) {
	o.context[key] = value
}

// ContextValue returns a conversation context value.
func (o *Orchestrator) ContextValue(key string) string {
	return o.context[key]
}

// ConversationSummary joins the last four history entries.
func (o *Orchestrator) ConversationSummary() string {
	if len(o.history) == 0 {
		return "Beginning of conversation"
	}
	start := max(0, len(o.history)-summaryTurns)
	return strings.Join(o.history[start:], " ")
}

// ExtractedParameters returns every "name = value" fact extracted so far,
// in extraction order.
func (o *Orchestrator) ExtractedParameters() []string {
	return slices.Clone(o.facts)
}

// Parameters returns the merged parameter map.
func (o *Orchestrator) Parameters() extract.Parameters {
	return maps.Clone(o.params)
}

// History returns the conversation so far, prefixed "User: " and
// "Assistant: ".
func (o *Orchestrator) History() []string {
	return slices.Clone(o.history)
}

// CurrentTopic is the concept the last question targeted.
func (o *Orchestrator) CurrentTopic() string { return o.currentTopic }

// LastQuestion returns the outstanding question, if any.
func (o *Orchestrator) LastQuestion() (socratic.Question, bool) {
	if o.lastQuestion == nil {
		return socratic.Question{}, false
	}
	return *o.lastQuestion, true
}

// Turns is the number of learner utterances processed.
func (o *Orchestrator) Turns() int { return o.turns }

// SessionID returns the journal session id.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// Model exposes the learner model for read-only inspection.
func (o *Orchestrator) Model() *learner.Model { return o.model }

// Graph returns the shared knowledge graph.
func (o *Orchestrator) Graph() *knowledge.Graph { return o.graph }

// Engine returns the session's question engine.
func (o *Orchestrator) Engine() *socratic.Engine { return o.engine }
