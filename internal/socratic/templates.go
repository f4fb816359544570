package socratic

// Templates maps each strategy to its question templates. Placeholders are
// written as {name}; see Engine.Generate for the recognized names.
type Templates map[Strategy][]string

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() Templates {
	return Templates{
		Clarify: {
			"What specifically do you mean by {concept}?",
			"Can you elaborate on your understanding of {concept}?",
			"When you mention {concept}, what comes to mind first?",
			"How would you explain {concept} to someone new to CFD?",
		},
		Explore: {
			"What would happen if we increased the {parameter}?",
			"How do you think {concept} affects the flow behavior?",
			"What if we applied {concept} to a different geometry?",
			"Can you predict what happens when {condition} changes?",
		},
		Confirm: {
			"So you're saying that {understanding}. Is that correct?",
			"Let me check my understanding: {summary}. Does this match your thinking?",
			"Based on what you've said, {interpretation}. Am I on the right track?",
			"It sounds like you believe {belief}. Is that accurate?",
		},
		Apply: {
			"How would you use {concept} to solve {problem}?",
			"If you were designing {application}, how would {concept} influence your approach?",
			"Can you think of a real-world situation where {concept} is critical?",
			"What steps would you take to implement {concept} in your simulation?",
		},
	}
}

// merged returns t with any strategy it lacks filled from the defaults.
func (t Templates) merged() Templates {
	out := DefaultTemplates()
	for s, list := range t {
		if len(list) > 0 {
			out[s] = append([]string(nil), list...)
		}
	}
	return out
}
