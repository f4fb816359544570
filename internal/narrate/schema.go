package narrate

import "github.com/cfdlab/foamtutor/internal/llm"

// ExplanationSchema is the structured output requested from the model.
var ExplanationSchema = &llm.Schema{
	Name:        "concept-explanation",
	Description: "A CFD concept explained for one learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Explanation pitched at the learner's level (3-6 sentences)",
			},
			"example": map[string]any{
				"type":        "string",
				"description": "One concrete OpenFOAM or engineering example, ideally from the learner's application area",
			},
			"check_question": map[string]any{
				"type":        "string",
				"description": "A single open question the learner can answer to show understanding",
			},
		},
		"required":             []any{"explanation", "example", "check_question"},
		"additionalProperties": false,
	},
}
