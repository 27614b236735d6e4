package dsl

import "github.com/aretw0/arbor/pkg/plan"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    plan.Step
	builder *Builder
}

// Under sets the parent branch index.
func (s *StepBuilder) Under(parent int) *StepBuilder {
	s.step.Parent = &parent
	return s
}

// Root clears the parent, making a branch step a root again.
func (s *StepBuilder) Root() *StepBuilder {
	s.step.Parent = nil
	return s
}

// Then returns the owning Builder so chains can continue.
func (s *StepBuilder) Then() *Builder {
	return s.builder
}

// Build returns the underlying plan.Step.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StepBuilder) Build() plan.Step {
	return s.step
}
