package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TurnEvent records one learner utterance and the tutor's reply.
type TurnEvent struct {
	ent.Schema
}

func (TurnEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (TurnEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int("turn").
			Comment("1-based turn number within the session"),
		field.Text("input").
			Comment("What the learner wrote"),
		field.Text("reply").
			Comment("The tutor's next question or prompt"),
		field.String("topic").
			Optional().
			Comment("Concept targeted by the reply, if any"),
		field.String("strategy").
			Optional().
			Comment("CLARIFY, EXPLORE, CONFIRM or APPLY"),
		field.Float("overall_confidence").
			Comment("Mean concept confidence after the turn"),
		field.Bool("ready").
			Comment("Whether the learner was ready for case setup after the turn"),
		field.Strings("parameters").
			Optional().
			Comment("Flattened name = value facts extracted this turn"),
	}
}

func (TurnEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("topic"),
	}
}
