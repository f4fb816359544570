package knowledge

import (
	"slices"

	"go.uber.org/zap"
)

// LearningPath returns the concepts the learner still needs, ordered so that
// every prerequisite precedes the concepts that depend on it, ending with
// targetID unless it is already understood.
//
// Expansion is depth-first over prerequisites that are not yet understood.
// A visiting set breaks cycles: the edge that closes a cycle is skipped (and
// logged) so the partial path is returned instead of recursing forever. A
// visited set keeps diamond dependencies from appearing twice. Unknown
// targets yield nil.
func (g *Graph) LearningPath(targetID string, u Understanding) []string {
	if !g.Has(targetID) {
		return nil
	}
	u = orNothing(u)

	var (
		path     []string
		visiting = make(map[string]bool)
		visited  = make(map[string]bool)
	)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		if visiting[id] {
			g.log.Warn("prerequisite cycle detected",
				zap.String("concept", id),
				zap.String("target", targetID))
			return
		}
		visiting[id] = true
		if c, ok := g.concepts[id]; ok {
			for _, pre := range c.Prerequisites {
				if !u.IsUnderstood(pre) {
					visit(pre)
				}
			}
		}
		visiting[id] = false
		visited[id] = true

		if !u.IsUnderstood(id) {
			path = append(path, id)
		}
	}
	visit(targetID)
	return path
}

// ShortestLearningPath returns the shortest chain of prerequisite edges
// leading from fromID to toID, both inclusive. It returns nil if either ID
// is unknown or toID does not build on fromID.
func (g *Graph) ShortestLearningPath(fromID, toID string) []string {
	if !g.Has(fromID) || !g.Has(toID) {
		return nil
	}
	if fromID == toID {
		return []string{fromID}
	}

	parent := map[string]string{fromID: ""}
	queue := []string{fromID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[id] {
			if _, seen := parent[dep]; seen {
				continue
			}
			parent[dep] = id
			if dep == toID {
				return unwind(parent, fromID, toID)
			}
			queue = append(queue, dep)
		}
	}
	return nil
}

func unwind(parent map[string]string, from, to string) []string {
	var path []string
	for id := to; ; id = parent[id] {
		path = append(path, id)
		if id == from {
			break
		}
	}
	slices.Reverse(path)
	return path
}
