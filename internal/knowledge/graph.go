package knowledge

import (
	"slices"
	"sort"

	"go.uber.org/zap"
)

// Graph is the registry of concepts and their prerequisite edges.
//
// Concepts live in an arena keyed by ID; edges are ID lists, never pointers,
// so authored cycles cannot create ownership loops. A Graph is built once and
// then only read, which makes it safe to share between sessions without
// locking.
type Graph struct {
	concepts   map[string]*Concept
	order      []string
	dependents map[string][]string

	applications    map[string][]string
	appExplanations map[appKey]string

	log *zap.Logger
}

type appKey struct {
	concept     string
	application string
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger routes data-quality warnings (such as prerequisite cycles) to l.
func WithLogger(l *zap.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		concepts:        make(map[string]*Concept),
		dependents:      make(map[string][]string),
		applications:    make(map[string][]string),
		appExplanations: make(map[appKey]string),
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddConcept registers c. Registering an ID twice replaces the earlier
// definition but keeps its original position. Edges declared through
// c.Prerequisites are indexed as dependents, and edges recorded earlier via
// AddDependency are folded into the prerequisite set. Edges are never removed.
func (g *Graph) AddConcept(c Concept) {
	if c.ID == "" {
		return
	}
	cc := c.clone()
	if _, exists := g.concepts[cc.ID]; !exists {
		g.order = append(g.order, cc.ID)
	}
	for _, pre := range g.pendingPrerequisites(cc.ID) {
		if !cc.HasPrerequisite(pre) {
			cc.Prerequisites = append(cc.Prerequisites, pre)
		}
	}
	g.concepts[cc.ID] = &cc
	for _, pre := range cc.Prerequisites {
		g.addDependent(pre, cc.ID)
	}
}

// AddDependency records that prerequisiteID must be understood before
// dependentID. No acyclicity check happens here; traversals guard against
// cycles instead. If dependentID is registered, prerequisiteID joins its
// prerequisite set so that both directions of the edge stay in agreement.
func (g *Graph) AddDependency(prerequisiteID, dependentID string) {
	if prerequisiteID == "" || dependentID == "" {
		return
	}
	g.addDependent(prerequisiteID, dependentID)
	if c, ok := g.concepts[dependentID]; ok && !c.HasPrerequisite(prerequisiteID) {
		c.Prerequisites = append(c.Prerequisites, prerequisiteID)
	}
}

// pendingPrerequisites lists, in ID order, every concept already indexed as
// a prerequisite of id.
func (g *Graph) pendingPrerequisites(id string) []string {
	var pres []string
	for pre, deps := range g.dependents {
		if slices.Contains(deps, id) {
			pres = append(pres, pre)
		}
	}
	sort.Strings(pres)
	return pres
}

func (g *Graph) addDependent(pre, dep string) {
	if !slices.Contains(g.dependents[pre], dep) {
		g.dependents[pre] = append(g.dependents[pre], dep)
	}
}

// AddApplication maps an application domain (e.g. "automotive") to the
// concepts it leans on.
func (g *Graph) AddApplication(application string, conceptIDs ...string) {
	for _, id := range conceptIDs {
		if !slices.Contains(g.applications[application], id) {
			g.applications[application] = append(g.applications[application], id)
		}
	}
}

// AddApplicationExplanation registers domain-specific wording for a concept.
func (g *Graph) AddApplicationExplanation(conceptID, application, text string) {
	g.appExplanations[appKey{conceptID, application}] = text
}

// Len returns the number of registered concepts.
func (g *Graph) Len() int {
	return len(g.concepts)
}

// Concept returns a copy of the concept with the given ID.
func (g *Graph) Concept(id string) (Concept, bool) {
	c, ok := g.concepts[id]
	if !ok {
		return Concept{}, false
	}
	return c.clone(), true
}

// Has reports whether id is registered.
func (g *Graph) Has(id string) bool {
	_, ok := g.concepts[id]
	return ok
}

// Name returns the display name for id, falling back to the ID itself.
func (g *Graph) Name(id string) string {
	if c, ok := g.concepts[id]; ok && c.Name != "" {
		return c.Name
	}
	return id
}

// Concepts returns all concepts in registration order.
func (g *Graph) Concepts() []Concept {
	out := make([]Concept, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.concepts[id].clone())
	}
	return out
}

// Prerequisites returns the direct prerequisite IDs of id.
func (g *Graph) Prerequisites(id string) []string {
	c, ok := g.concepts[id]
	if !ok {
		return nil
	}
	return slices.Clone(c.Prerequisites)
}

// Dependents returns the IDs of concepts that list id as a prerequisite.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// Applications returns all registered application domains, sorted.
func (g *Graph) Applications() []string {
	apps := make([]string, 0, len(g.applications))
	for app := range g.applications {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// ApplicationConcepts returns the concepts relevant to an application domain.
func (g *Graph) ApplicationConcepts(application string) []string {
	return slices.Clone(g.applications[application])
}

// GetReadyToLearn returns the concepts that are not yet understood but whose
// prerequisites all are, in registration order. Concepts with no
// prerequisites are always ready until understood.
func (g *Graph) GetReadyToLearn(u Understanding) []string {
	u = orNothing(u)
	var ready []string
	for _, id := range g.order {
		if u.IsUnderstood(id) {
			continue
		}
		if g.hasPrerequisites(id, u) {
			ready = append(ready, id)
		}
	}
	return ready
}

func (g *Graph) hasPrerequisites(id string, u Understanding) bool {
	c, ok := g.concepts[id]
	if !ok {
		return false
	}
	for _, pre := range c.Prerequisites {
		if !u.IsUnderstood(pre) {
			return false
		}
	}
	return true
}

// Readiness returns the fraction of id's prerequisites that are understood:
// 1.0 when there are none, 0.0 when id is unknown.
func (g *Graph) Readiness(id string, u Understanding) float64 {
	c, ok := g.concepts[id]
	if !ok {
		return 0
	}
	if len(c.Prerequisites) == 0 {
		return 1
	}
	u = orNothing(u)
	met := 0
	for _, pre := range c.Prerequisites {
		if u.IsUnderstood(pre) {
			met++
		}
	}
	return float64(met) / float64(len(c.Prerequisites))
}

// Related returns the union of id's direct prerequisites and direct
// dependents, sorted. Unknown IDs yield nil.
func (g *Graph) Related(id string) []string {
	c, ok := g.concepts[id]
	if !ok {
		return nil
	}
	set := make(map[string]bool)
	for _, pre := range c.Prerequisites {
		set[pre] = true
	}
	for _, dep := range g.dependents[id] {
		set[dep] = true
	}
	out := make([]string, 0, len(set))
	for related := range set {
		out = append(out, related)
	}
	sort.Strings(out)
	return out
}

// TopologicalOrder returns registered concepts with every prerequisite ahead
// of its dependents (Kahn's algorithm, ties broken by ID). Concepts stuck
// behind a cycle are appended at the end in ID order.
func (g *Graph) TopologicalOrder() []string {
	inDegree := make(map[string]int, len(g.concepts))
	for id, c := range g.concepts {
		n := 0
		for _, pre := range c.Prerequisites {
			if g.Has(pre) {
				n++
			}
		}
		inDegree[id] = n
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.concepts))
	placed := make(map[string]bool, len(g.concepts))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		placed[id] = true

		deps := slices.Clone(g.dependents[id])
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := inDegree[dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(g.concepts) {
		var stuck []string
		for id := range g.concepts {
			if !placed[id] {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		g.log.Warn("concepts unreachable in topological order, likely a prerequisite cycle",
			zap.Strings("concepts", stuck))
		order = append(order, stuck...)
	}
	return order
}
