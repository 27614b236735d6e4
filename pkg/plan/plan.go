package plan

import (
	"errors"
	"fmt"
)

// Op is the insertion operation of a step.
type Op string

const (
	OpBranch Op = "branch"
	OpLeaf   Op = "leaf"
)

// ErrInvalidStep is returned when a step cannot be applied as written.
var ErrInvalidStep = errors.New("invalid step")

// Step is one insertion. Parent is optional for branches and required for leaves.
type Step struct {
	Op     Op   `json:"op" yaml:"op" mapstructure:"op"`
	Index  int  `json:"index" yaml:"index" mapstructure:"index"`
	Parent *int `json:"parent,omitempty" yaml:"parent,omitempty" mapstructure:"parent"`
}

func (s Step) String() string {
	if s.Parent == nil {
		return fmt.Sprintf("%s %d", s.Op, s.Index)
	}
	return fmt.Sprintf("%s %d under %d", s.Op, s.Index, *s.Parent)
}

// Plan is a named, ordered list of steps.
type Plan struct {
	Name  string `json:"name" yaml:"name"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Validate checks every step before anything is applied.
func (p *Plan) Validate() error {
	var errs []error
	for i, s := range p.Steps {
		switch s.Op {
		case OpBranch:
		case OpLeaf:
			if s.Parent == nil {
				errs = append(errs, fmt.Errorf("%w: step %d: leaf %d has no parent", ErrInvalidStep, i, s.Index))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidStep, i, s.Op))
		}
	}
	return errors.Join(errs...)
}

func intPtr(v int) *int {
	return &v
}

// Demo returns the canonical sample build: three branches, one attached
// leaf, and one leaf whose parent (Branch_3) does not exist.
func Demo() *Plan {
	return &Plan{
		Name: "demo",
		Steps: []Step{
			{Op: OpBranch, Index: 0},
			{Op: OpBranch, Index: 1, Parent: intPtr(0)},
			{Op: OpBranch, Index: 2, Parent: intPtr(0)},
			{Op: OpLeaf, Index: 0, Parent: intPtr(2)},
			{Op: OpLeaf, Index: 1, Parent: intPtr(3)},
		},
	}
}
