package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/tree"
)

// Mode controls what Apply does after a failed step.
type Mode int

const (
	// ContinueOnError replays every step and collects failures.
	ContinueOnError Mode = iota
	// StopOnError stops after the first failed step.
	StopOnError
)

// StepError ties a failed insertion to its position in the plan.
type StepError struct {
	Step int
	Op   Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Report summarizes a replay. Applied counts executed steps, failed ones
// included, since a failed step still inserts its node.
type Report struct {
	Applied int
	Failed  []*StepError
}

// Err joins all step failures, or returns nil.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Apply validates p and replays it onto b in order.
// The returned error is a validation error (nothing applied) or Report.Err().
func Apply(ctx context.Context, b *tree.Builder, p *Plan, mode Mode) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var err error
		switch s.Op {
		case OpBranch:
			err = b.AddBranchContext(ctx, s.Index, s.Parent)
		case OpLeaf:
			err = b.AddLeafContext(ctx, s.Index, *s.Parent)
		}
		report.Applied++

		if err != nil {
			report.Failed = append(report.Failed, &StepError{Step: i, Op: s, Err: err})
			if mode == StopOnError {
				break
			}
		}
	}

	return report, report.Err()
}
