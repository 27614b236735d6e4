package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/plan"
)

// Builder accumulates steps in call order.
type Builder struct {
	name  string
	steps []*StepBuilder
}

// New creates a new plan builder.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Branch appends a branch step. Without Under it becomes a root.
func (b *Builder) Branch(index int) *StepBuilder {
	return b.add(plan.OpBranch, index)
}

// Leaf appends a leaf step. Leaves must be placed with Under.
func (b *Builder) Leaf(index int) *StepBuilder {
	return b.add(plan.OpLeaf, index)
}

func (b *Builder) add(op plan.Op, index int) *StepBuilder {
	sb := &StepBuilder{
		step:    plan.Step{Op: op, Index: index},
		builder: b,
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Build compiles the steps into a validated plan.
func (b *Builder) Build() (*plan.Plan, error) {
	p := &plan.Plan{
		Name:  b.name,
		Steps: make([]plan.Step, 0, len(b.steps)),
	}
	for _, sb := range b.steps {
		p.Steps = append(p.Steps, sb.Build())
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}
	return p, nil
}
