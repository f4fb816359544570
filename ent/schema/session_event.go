package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records a tutoring session starting or ending.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("action").
			NotEmpty().
			Comment("start or end"),
		field.String("level").
			Comment("Experience level at the time of the event"),
		field.Int("turns").
			Default(0).
			Comment("Turns taken (on end only)"),
		field.Float("overall_confidence").
			Default(0).
			Comment("Mean concept confidence (on end only)"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("action"),
	}
}
