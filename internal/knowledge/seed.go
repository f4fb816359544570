package knowledge

// Core concept IDs referenced by the learner model and dialogue policy.
const (
	ConceptFluidProperties    = "fluid_properties"
	ConceptReynoldsNumber     = "reynolds_number"
	ConceptBoundaryConditions = "boundary_conditions"
	ConceptTurbulence         = "turbulence"
	ConceptMeshQuality        = "mesh_quality"
	ConceptSolverSelection    = "solver_selection"
	ConceptConvergence        = "convergence"
	ConceptBoundaryLayer      = "boundary_layer"
	ConceptTurbulenceModeling = "turbulence_modeling"
	ConceptMeshRefinement     = "mesh_refinement"
	ConceptHeatTransfer       = "heat_transfer"
	ConceptMultiphaseFlow     = "multiphase_flow"
	ConceptSurfaceTension     = "surface_tension"
	ConceptContactAngle       = "contact_angle"
)

// DefaultGraph builds the built-in CFD curriculum. Each call returns a fresh
// graph; callers share the result by reference.
func DefaultGraph(opts ...Option) *Graph {
	g := New(opts...)
	for _, c := range seedConcepts() {
		g.AddConcept(c)
	}

	g.AddDependency(ConceptFluidProperties, ConceptReynoldsNumber)
	g.AddDependency(ConceptReynoldsNumber, ConceptTurbulence)
	g.AddDependency(ConceptBoundaryConditions, ConceptTurbulence)
	g.AddDependency(ConceptMeshQuality, ConceptTurbulence)

	g.AddApplication("automotive", "external_flow", ConceptTurbulence, ConceptHeatTransfer)
	g.AddApplication("aerospace", "external_flow", "compressible_flow", ConceptTurbulence)
	g.AddApplication("hvac", "internal_flow", ConceptHeatTransfer, "buoyancy")
	g.AddApplication("marine", "external_flow", ConceptMultiphaseFlow, "free_surface")
	g.AddApplication("industrial", "internal_flow", ConceptHeatTransfer, ConceptMultiphaseFlow)

	g.AddApplicationExplanation(ConceptReynoldsNumber, "automotive",
		"helps determine if flow around the vehicle is turbulent, which affects drag and heat transfer calculations.")
	g.AddApplicationExplanation(ConceptTurbulence, "aerospace",
		"is critical for accurate lift and drag predictions on aircraft surfaces.")
	g.AddApplicationExplanation(ConceptHeatTransfer, "hvac",
		"calculations determine the efficiency of heating and cooling systems.")
	return g
}

func seedConcepts() []Concept {
	return []Concept{
		// Foundations.
		{
			ID:              "velocity",
			Name:            "Flow Velocity",
			Description:     "Speed and direction of fluid motion at a point in the domain",
			ComplexityLevel: 1,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"What is the characteristic velocity of the flow?"},
		},
		{
			ID:              "characteristic_length",
			Name:            "Characteristic Length",
			Description:     "Representative geometric scale used in dimensionless numbers, such as pipe diameter or chord length",
			ComplexityLevel: 1,
			Applications:    []string{"pipe_flow", "external_flow"},
			KeyQuestions:    []string{"Which length best describes the geometry?"},
		},
		{
			ID:              ConceptFluidProperties,
			Name:            "Fluid Properties",
			Description:     "Physical properties that characterize a fluid",
			ComplexityLevel: 1,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"What is density?", "What is viscosity?", "How do properties affect flow?"},
		},
		{
			ID:              "flow_physics",
			Name:            "Flow Physics",
			Description:     "Conservation of mass, momentum and energy as they apply to moving fluids",
			ComplexityLevel: 1,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"Which quantities are conserved in a flow?"},
		},
		{
			ID:              "discretization",
			Name:            "Discretization",
			Description:     "Approximating continuous equations on a finite set of cells or points",
			ComplexityLevel: 2,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"How does the finite volume method split the domain?"},
		},
		{
			ID:              "numerical_methods",
			Name:            "Numerical Methods",
			Description:     "Schemes and algorithms used to solve the discretized equations",
			ComplexityLevel: 2,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"What is the difference between upwind and central schemes?"},
		},

		// Core curriculum.
		{
			ID:                   ConceptReynoldsNumber,
			Name:                 "Reynolds Number",
			Description:          "Dimensionless parameter characterizing flow regime",
			Prerequisites:        []string{ConceptFluidProperties, "characteristic_length", "velocity"},
			ComplexityLevel:      2,
			Applications:         []string{"pipe_flow", "external_flow", "turbulence_analysis"},
			CommonMisconceptions: []string{"Higher Re always means better", "Re is the same for all geometries"},
			KeyQuestions:         []string{"What does Re tell us?", "How to calculate Re?", "When is flow turbulent?"},
		},
		{
			ID:              ConceptBoundaryConditions,
			Name:            "Boundary Conditions",
			Description:     "Mathematical constraints applied at domain boundaries",
			Prerequisites:   []string{ConceptFluidProperties, "flow_physics"},
			ComplexityLevel: 2,
			Applications:    []string{"all_cfd_simulations"},
			CommonMisconceptions: []string{
				"Fixing both velocity and pressure at an inlet is always safe",
			},
			KeyQuestions: []string{"What BC for inlet?", "What BC for walls?", "What BC for outlets?"},
		},
		{
			ID:              ConceptBoundaryLayer,
			Name:            "Boundary Layer",
			Description:     "Thin region near walls where viscous effects dominate and velocity rises from zero to the free stream",
			Prerequisites:   []string{ConceptReynoldsNumber},
			ComplexityLevel: 3,
			Applications:    []string{"external_flow", "heat_transfer"},
			KeyQuestions:    []string{"What sets the boundary layer thickness?", "What is y+?"},
		},
		{
			ID:              "navier_stokes",
			Name:            "Navier-Stokes Equations",
			Description:     "Momentum conservation equations governing viscous fluid motion",
			Prerequisites:   []string{"flow_physics", ConceptFluidProperties},
			ComplexityLevel: 3,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"Which terms of the momentum equation dominate at high Re?"},
		},
		{
			ID:              ConceptMeshQuality,
			Name:            "Mesh Quality",
			Description:     "Geometric quality metrics for computational grids",
			Prerequisites:   []string{"discretization", "numerical_methods"},
			ComplexityLevel: 3,
			Applications:    []string{"all_cfd_simulations"},
			CommonMisconceptions: []string{
				"A finer mesh is always a better mesh",
			},
			KeyQuestions: []string{"What is skewness?", "What is aspect ratio?", "How fine should mesh be?"},
		},
		{
			ID:              ConceptMeshRefinement,
			Name:            "Mesh Refinement",
			Description:     "Locally increasing grid resolution where gradients are steep",
			Prerequisites:   []string{ConceptMeshQuality},
			ComplexityLevel: 3,
			Applications:    []string{"external_flow", "boundary_layer_resolution"},
			KeyQuestions:    []string{"Where should the mesh be refined?", "How do you run a mesh independence study?"},
		},
		{
			ID:              ConceptTurbulence,
			Name:            "Turbulence Modeling",
			Description:     "Mathematical models for turbulent flow simulation",
			Prerequisites:   []string{ConceptReynoldsNumber, ConceptBoundaryLayer, "navier_stokes"},
			ComplexityLevel: 4,
			Applications:    []string{"high_re_flows", "external_aerodynamics", "internal_flows"},
			CommonMisconceptions: []string{
				"LES is always more accurate than RANS for engineering quantities",
			},
			KeyQuestions: []string{"Which turbulence model?", "What is y+?", "RANS vs LES?"},
		},
		{
			ID:              ConceptTurbulenceModeling,
			Name:            "Advanced Turbulence Modeling",
			Description:     "Choosing and tuning RANS, hybrid and scale-resolving models for a given flow",
			Prerequisites:   []string{ConceptTurbulence},
			ComplexityLevel: 5,
			Applications:    []string{"external_aerodynamics", "combustion"},
			KeyQuestions:    []string{"When would you switch from k-epsilon to k-omega SST?"},
		},
		{
			ID:              ConceptSolverSelection,
			Name:            "Solver Selection",
			Description:     "Matching an OpenFOAM solver to the flow physics: steady or transient, compressible or not, single or multiphase",
			Prerequisites:   []string{ConceptReynoldsNumber, ConceptBoundaryConditions},
			ComplexityLevel: 3,
			Applications:    []string{"all_cfd_simulations"},
			KeyQuestions:    []string{"Is the flow steady or transient?", "Why choose simpleFoam over pimpleFoam?"},
		},
		{
			ID:              ConceptConvergence,
			Name:            "Convergence",
			Description:     "Judging when residuals and monitored quantities show a trustworthy solution",
			Prerequisites:   []string{"numerical_methods", ConceptSolverSelection},
			ComplexityLevel: 3,
			Applications:    []string{"all_cfd_simulations"},
			CommonMisconceptions: []string{
				"Low residuals alone prove the answer is correct",
			},
			KeyQuestions: []string{"Which residual levels are acceptable?", "What quantities would you monitor?"},
		},

		// Application areas.
		{
			ID:              "internal_flow",
			Name:            "Internal Flow",
			Description:     "Flow confined by walls, such as pipes, ducts and channels",
			Prerequisites:   []string{ConceptReynoldsNumber, ConceptBoundaryConditions},
			ComplexityLevel: 2,
			Applications:    []string{"pipe_flow", "hvac"},
		},
		{
			ID:              "external_flow",
			Name:            "External Flow",
			Description:     "Flow around immersed bodies such as vehicles, wings and buildings",
			Prerequisites:   []string{ConceptReynoldsNumber, ConceptBoundaryLayer},
			ComplexityLevel: 3,
			Applications:    []string{"automotive", "aerospace", "marine"},
		},
		{
			ID:              "compressible_flow",
			Name:            "Compressible Flow",
			Description:     "Flow where density changes with pressure, typically above Mach 0.3",
			Prerequisites:   []string{"navier_stokes", ConceptFluidProperties},
			ComplexityLevel: 4,
			Applications:    []string{"aerospace"},
			KeyQuestions:    []string{"At what Mach number do compressibility effects matter?"},
		},
		{
			ID:              ConceptHeatTransfer,
			Name:            "Heat Transfer",
			Description:     "Conduction, convection and radiation of thermal energy within and across the fluid",
			Prerequisites:   []string{ConceptFluidProperties, ConceptBoundaryConditions},
			ComplexityLevel: 3,
			Applications:    []string{"hvac", "electronics_cooling", "automotive"},
			KeyQuestions:    []string{"Is natural or forced convection dominant?"},
		},
		{
			ID:              "buoyancy",
			Name:            "Buoyancy",
			Description:     "Flow driven by density differences in a gravitational field",
			Prerequisites:   []string{ConceptHeatTransfer},
			ComplexityLevel: 3,
			Applications:    []string{"hvac", "natural_convection"},
		},
		{
			ID:              ConceptSurfaceTension,
			Name:            "Surface Tension",
			Description:     "Force per unit length acting along a fluid interface",
			Prerequisites:   []string{ConceptFluidProperties},
			ComplexityLevel: 3,
			Applications:    []string{"multiphase"},
		},
		{
			ID:              ConceptContactAngle,
			Name:            "Contact Angle",
			Description:     "Angle where a fluid interface meets a solid wall, describing wetting behaviour",
			Prerequisites:   []string{ConceptSurfaceTension},
			ComplexityLevel: 3,
			Applications:    []string{"multiphase"},
		},
		{
			ID:              ConceptMultiphaseFlow,
			Name:            "Multiphase Flow",
			Description:     "Simultaneous flow of several immiscible phases with tracked interfaces",
			Prerequisites:   []string{ConceptSurfaceTension, ConceptContactAngle, ConceptBoundaryConditions},
			ComplexityLevel: 4,
			Applications:    []string{"marine", "process_engineering"},
			KeyQuestions:    []string{"How does the VOF method track the interface?"},
		},
		{
			ID:              "free_surface",
			Name:            "Free Surface Flow",
			Description:     "Multiphase flow with a gas-liquid interface open to the atmosphere",
			Prerequisites:   []string{ConceptMultiphaseFlow},
			ComplexityLevel: 4,
			Applications:    []string{"marine"},
		},
	}
}
