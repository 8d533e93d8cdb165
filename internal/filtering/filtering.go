// Package filtering narrows a résumé list through a sequence of steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/recruit"
)

// Filter represents a single filtering step applied to a résumé list.
// Apply must not modify the list it is given.
type Filter interface {
	Name() string
	IsEnabled() bool

	Apply(ctx context.Context, list recruit.Resumes) (recruit.Resumes, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter. Reason explains a disabled
// step; Details carries the enabled step's parameters.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Run executes the enabled steps in order and returns what is left.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, list recruit.Resumes) (recruit.Resumes, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			continue
		}

		next, info, err := step.Apply(ctx, list)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		list = next
	}

	return list, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep copies the records matching pred into a new list.
func keep(list recruit.Resumes, pred func(recruit.Resume) bool) (recruit.Resumes, Step) {
	out := make(recruit.Resumes, 0, len(list))
	for _, resume := range list {
		if pred(resume) {
			out = append(out, resume)
		}
	}

	return out, Step{Initial: len(list), Dropped: len(list) - len(out), Left: len(out)}
}
