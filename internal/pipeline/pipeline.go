// Package pipeline runs named steps strictly in order, exactly one attempt
// each. Both binaries are built on it: a failed step aborts everything after
// it, and the failure keeps the step's name on its way up.
package pipeline

import "jupiter-deploy/internal/pkg/logger"

// Step is one named unit of work.
type Step struct {
	Name string
	Run  func() error
}

// Run executes steps sequentially and stops at the first failure.
func Run(log *logger.Logger, steps []Step) error {
	for _, step := range steps {
		log.StageStart(step.Name)
		if err := step.Run(); err != nil {
			log.StageFailed(step.Name, err)
			return &StageError{Stage: step.Name, Err: err}
		}
		log.StageDone(step.Name)
	}
	return nil
}
