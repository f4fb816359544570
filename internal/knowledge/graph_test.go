package knowledge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultGraph_Valid(t *testing.T) {
	g := DefaultGraph()
	require.NoError(t, g.Validate())
	assert.Equal(t, 25, g.Len())
}

func TestDefaultGraph_DependencyFoldsIntoPrerequisites(t *testing.T) {
	g := DefaultGraph()
	c, ok := g.Concept(ConceptTurbulence)
	require.True(t, ok)
	for _, pre := range []string{ConceptReynoldsNumber, ConceptBoundaryConditions, ConceptMeshQuality, ConceptBoundaryLayer} {
		assert.True(t, c.HasPrerequisite(pre), "turbulence should require %s", pre)
	}
	assert.Contains(t, g.Dependents(ConceptMeshQuality), ConceptTurbulence)
}

func TestAddDependency_BeforeConceptRegistered(t *testing.T) {
	g := New()
	g.AddDependency("a", "b")
	g.AddConcept(Concept{ID: "a", Name: "A", ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "b", Name: "B", ComplexityLevel: 1})

	assert.Equal(t, []string{"a"}, g.Prerequisites("b"))
	assert.Equal(t, []string{"b"}, g.Dependents("a"))
}

func TestAddDependency_Idempotent(t *testing.T) {
	g := New()
	g.AddConcept(Concept{ID: "a", ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "b", Prerequisites: []string{"a"}, ComplexityLevel: 1})
	g.AddDependency("a", "b")
	g.AddDependency("a", "b")

	assert.Equal(t, []string{"a"}, g.Prerequisites("b"))
	assert.Equal(t, []string{"b"}, g.Dependents("a"))
}

func TestConcept_ReturnsCopy(t *testing.T) {
	g := DefaultGraph()
	c, _ := g.Concept(ConceptReynoldsNumber)
	c.Prerequisites[0] = "mutated"

	again, _ := g.Concept(ConceptReynoldsNumber)
	assert.NotEqual(t, "mutated", again.Prerequisites[0])
}

func TestLearningPath_PrerequisitesFirst(t *testing.T) {
	g := DefaultGraph()
	path := g.LearningPath(ConceptReynoldsNumber, nil)

	want := []string{ConceptFluidProperties, "characteristic_length", "velocity", ConceptReynoldsNumber}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("LearningPath mismatch (-want +got):\n%s", diff)
	}
}

func TestLearningPath_SkipsUnderstood(t *testing.T) {
	g := DefaultGraph()
	known := UnderstoodSet{ConceptFluidProperties: true, "velocity": true}

	path := g.LearningPath(ConceptReynoldsNumber, known)
	assert.Equal(t, []string{"characteristic_length", ConceptReynoldsNumber}, path)

	known[ConceptReynoldsNumber] = true
	known["characteristic_length"] = true
	assert.Empty(t, g.LearningPath(ConceptReynoldsNumber, known))
}

func TestLearningPath_OrderRespectsEveryEdge(t *testing.T) {
	g := DefaultGraph()
	path := g.LearningPath(ConceptTurbulenceModeling, nil)
	require.NotEmpty(t, path)
	assert.Equal(t, ConceptTurbulenceModeling, path[len(path)-1])

	pos := make(map[string]int, len(path))
	for i, id := range path {
		_, dup := pos[id]
		require.False(t, dup, "duplicate %s in path", id)
		pos[id] = i
	}
	for _, id := range path {
		for _, pre := range g.Prerequisites(id) {
			p, ok := pos[pre]
			require.True(t, ok, "%s missing prerequisite %s", id, pre)
			assert.Less(t, p, pos[id], "%s must come before %s", pre, id)
		}
	}
}

func TestLearningPath_TwoNodeCycleTerminates(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g := New(WithLogger(zap.New(core)))
	g.AddConcept(Concept{ID: "a", Name: "A", Prerequisites: []string{"b"}, ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "b", Name: "B", Prerequisites: []string{"a"}, ComplexityLevel: 1})

	path := g.LearningPath("a", nil)
	assert.Equal(t, []string{"b", "a"}, path)
	assert.Equal(t, 1, logs.FilterMessage("prerequisite cycle detected").Len())

	assert.Error(t, g.Validate())
}

func TestLearningPath_DiamondNoDuplicates(t *testing.T) {
	g := New()
	g.AddConcept(Concept{ID: "root", ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "left", Prerequisites: []string{"root"}, ComplexityLevel: 2})
	g.AddConcept(Concept{ID: "right", Prerequisites: []string{"root"}, ComplexityLevel: 2})
	g.AddConcept(Concept{ID: "top", Prerequisites: []string{"left", "right"}, ComplexityLevel: 3})

	assert.Equal(t, []string{"root", "left", "right", "top"}, g.LearningPath("top", nil))
}

func TestLearningPath_UnknownTarget(t *testing.T) {
	assert.Nil(t, DefaultGraph().LearningPath("warp_drive", nil))
}

func TestGetReadyToLearn(t *testing.T) {
	g := New()
	g.AddConcept(Concept{ID: "a", ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "b", Prerequisites: []string{"a"}, ComplexityLevel: 2})
	g.AddConcept(Concept{ID: "c", Prerequisites: []string{"a", "b"}, ComplexityLevel: 3})

	assert.Equal(t, []string{"a"}, g.GetReadyToLearn(nil))
	assert.Equal(t, []string{"b"}, g.GetReadyToLearn(UnderstoodSet{"a": true}))
	assert.Equal(t, []string{"c"}, g.GetReadyToLearn(UnderstoodSet{"a": true, "b": true}))
	assert.Empty(t, g.GetReadyToLearn(UnderstoodSet{"a": true, "b": true, "c": true}))
}

func TestReadiness(t *testing.T) {
	g := DefaultGraph()
	tests := []struct {
		name  string
		id    string
		known UnderstoodSet
		want  float64
	}{
		{"no prerequisites", ConceptFluidProperties, nil, 1.0},
		{"unknown concept", "warp_drive", nil, 0.0},
		{"none met", ConceptReynoldsNumber, nil, 0.0},
		{"one of three", ConceptReynoldsNumber, UnderstoodSet{"velocity": true}, 1.0 / 3.0},
		{"all met", ConceptReynoldsNumber, UnderstoodSet{"velocity": true, "characteristic_length": true, ConceptFluidProperties: true}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, g.Readiness(tt.id, tt.known), 1e-9)
		})
	}
}

func TestRelated(t *testing.T) {
	g := DefaultGraph()
	related := g.Related(ConceptReynoldsNumber)
	assert.Contains(t, related, ConceptFluidProperties)
	assert.Contains(t, related, ConceptTurbulence)
	assert.Contains(t, related, ConceptBoundaryLayer)
	assert.Nil(t, g.Related("warp_drive"))
}

func TestExplanation(t *testing.T) {
	g := DefaultGraph()

	beginner := g.Explanation(ConceptReynoldsNumber, LevelBeginner)
	assert.Equal(t, "Dimensionless parameter characterizing flow regime This is a fundamental concept in CFD.", beginner)

	assert.Contains(t, g.Explanation(ConceptTurbulence, LevelBeginner), "advanced concept")
	assert.Contains(t, g.Explanation(ConceptReynoldsNumber, LevelExpert), "Key applications include: pipe_flow, external_flow")
	assert.Equal(t, "Dimensionless parameter characterizing flow regime", g.Explanation(ConceptReynoldsNumber, LevelIntermediate))
	assert.Empty(t, g.Explanation("warp_drive", LevelExpert))
}

func TestApplicationExplanation(t *testing.T) {
	g := DefaultGraph()
	assert.Contains(t, g.ApplicationExplanation(ConceptReynoldsNumber, "automotive"), "flow around the vehicle")
	assert.Equal(t,
		"In marine applications, Mesh Quality plays a key role in accurate simulation results.",
		g.ApplicationExplanation(ConceptMeshQuality, "marine"))
	assert.Empty(t, g.ApplicationExplanation("warp_drive", "marine"))
}

func TestApplicationConcepts(t *testing.T) {
	g := DefaultGraph()
	assert.Equal(t, []string{"external_flow", ConceptTurbulence, ConceptHeatTransfer}, g.ApplicationConcepts("automotive"))
	assert.Empty(t, g.ApplicationConcepts("space_elevator"))
	assert.Contains(t, g.Applications(), "hvac")
}

func TestShortestLearningPath(t *testing.T) {
	g := DefaultGraph()
	assert.Equal(t,
		[]string{ConceptFluidProperties, ConceptReynoldsNumber, ConceptTurbulence},
		g.ShortestLearningPath(ConceptFluidProperties, ConceptTurbulence))
	assert.Equal(t, []string{ConceptMeshQuality}, g.ShortestLearningPath(ConceptMeshQuality, ConceptMeshQuality))
	assert.Nil(t, g.ShortestLearningPath(ConceptTurbulence, ConceptFluidProperties))
	assert.Nil(t, g.ShortestLearningPath("warp_drive", ConceptTurbulence))
}

func TestTopologicalOrder(t *testing.T) {
	g := DefaultGraph()
	order := g.TopologicalOrder()
	require.Len(t, order, g.Len())

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, c := range g.Concepts() {
		for _, pre := range c.Prerequisites {
			assert.Less(t, pos[pre], pos[c.ID], "%s before %s", pre, c.ID)
		}
	}
}

func TestTopologicalOrder_CycleAppended(t *testing.T) {
	g := New()
	g.AddConcept(Concept{ID: "root", ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "x", Prerequisites: []string{"y"}, ComplexityLevel: 1})
	g.AddConcept(Concept{ID: "y", Prerequisites: []string{"x"}, ComplexityLevel: 1})

	assert.Equal(t, []string{"root", "x", "y"}, g.TopologicalOrder())
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel(" Expert ")
	assert.True(t, ok)
	assert.Equal(t, LevelExpert, l)

	_, ok = ParseLevel("guru")
	assert.False(t, ok)
}
