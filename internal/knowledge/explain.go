package knowledge

import "strings"

// Explanation returns static text for id, tailored to the learner's level.
// Beginners are told whether the concept is groundwork; experts get the
// applications it shows up in. Unknown concepts yield "".
func (g *Graph) Explanation(id string, level Level) string {
	c, ok := g.concepts[id]
	if !ok {
		return ""
	}

	text := c.Description
	switch level {
	case LevelBeginner:
		if c.IsFundamental() {
			text += " This is a fundamental concept in CFD."
		} else {
			text += " This is an advanced concept in CFD."
		}
	case LevelExpert:
		if len(c.Applications) > 0 {
			text += " Key applications include: " + strings.Join(c.Applications, ", ") + "."
		}
	}
	return text
}

// ApplicationExplanation returns wording for id specific to an application
// domain. Pairs without registered wording get a generic sentence; unknown
// concepts yield "".
func (g *Graph) ApplicationExplanation(id, application string) string {
	if !g.Has(id) {
		return ""
	}
	lead := "In " + application + " applications, " + g.Name(id)
	if text, ok := g.appExplanations[appKey{id, application}]; ok {
		return lead + " " + text
	}
	return lead + " plays a key role in accurate simulation results."
}
