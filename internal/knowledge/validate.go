package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

// Validate reports data-quality problems in the graph: dangling
// prerequisites, prerequisite cycles, the absence of any root concept, and
// out-of-range complexity levels. All problems are combined into one error.
//
// Queries never depend on Validate having passed; it exists for catalog
// authors and the CLI.
func (g *Graph) Validate() error {
	var errs []string

	for _, id := range g.order {
		c := g.concepts[id]
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("concept %q has no name", id))
		}
		if c.ComplexityLevel < MinComplexity || c.ComplexityLevel > MaxComplexity {
			errs = append(errs, fmt.Sprintf("concept %q: complexity must be in [%d, %d], got %d",
				id, MinComplexity, MaxComplexity, c.ComplexityLevel))
		}
		for _, pre := range c.Prerequisites {
			if !g.Has(pre) {
				errs = append(errs, fmt.Sprintf("concept %q references unknown prerequisite %q", id, pre))
			}
			if pre == id {
				errs = append(errs, fmt.Sprintf("concept %q lists itself as a prerequisite", id))
			}
		}
	}

	if cyc := g.cycleMembers(); len(cyc) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving concepts: %s", strings.Join(cyc, ", ")))
	}

	if g.Len() > 0 {
		hasRoot := false
		for _, c := range g.concepts {
			if len(c.Prerequisites) == 0 {
				hasRoot = true
				break
			}
		}
		if !hasRoot {
			errs = append(errs, "no root concepts found (at least one concept must have no prerequisites)")
		}
	}

	for app, ids := range g.applications {
		for _, id := range ids {
			if !g.Has(id) {
				errs = append(errs, fmt.Sprintf("application %q references unknown concept %q", app, id))
			}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("knowledge graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleMembers returns the sorted IDs left with unmet in-degree after a
// Kahn pass, which are exactly the concepts on or behind a cycle.
func (g *Graph) cycleMembers() []string {
	inDegree := make(map[string]int, len(g.concepts))
	for id, c := range g.concepts {
		for _, pre := range c.Prerequisites {
			if g.Has(pre) {
				inDegree[id]++
			}
		}
	}
	var queue []string
	for id := range g.concepts {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[id] {
			if !g.Has(dep) {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	var stuck []string
	for id, deg := range inDegree {
		if deg > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}
