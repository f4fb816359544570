package narrate

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a Socratic CFD tutor helping an engineer learn OpenFOAM. Explain one concept at a time, precisely and without filler. Prefer physical intuition to formula dumps unless the learner is an expert.`

var levelGuidance = map[string]string{
	"beginner":     "Avoid equations beyond simple ratios. Define every term you use.",
	"intermediate": "Use standard notation sparingly and connect it to OpenFOAM settings.",
	"expert":       "Be concise. Equations, model assumptions and solver implications are welcome.",
}

func buildUserMessage(in ExplainInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s (%s)\n", in.Concept.Name, in.Concept.ID)
	if in.Concept.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", in.Concept.Description)
	}
	fmt.Fprintf(&b, "Learner level: %s\n", in.Level)
	fmt.Fprintf(&b, "Learner confidence on this concept: %.0f%%\n", in.Confidence*100)
	if in.Interest != "" {
		fmt.Fprintf(&b, "Application interest: %s\n", in.Interest)
	}

	if len(in.Concept.CommonMisconceptions) > 0 {
		b.WriteString("\nCommon misconceptions to address:\n")
		for _, m := range in.Concept.CommonMisconceptions {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	if len(in.RecentTurns) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, t := range in.RecentTurns {
			fmt.Fprintf(&b, "%s\n", t)
		}
	}

	if in.Reference != "" {
		fmt.Fprintf(&b, "\nReference explanation:\n%s\n", in.Reference)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("1. Explain the concept for this learner. Stay consistent with the reference explanation.\n")
	if g, ok := levelGuidance[string(in.Level)]; ok {
		fmt.Fprintf(&b, "2. %s\n", g)
	}
	b.WriteString("3. Give one concrete example and finish with one question that checks understanding.\n")
	b.WriteString("4. Plain text only. No Markdown headings.")

	return b.String()
}
