package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jupiter-deploy/internal/pkg/logger"
)

func TestRunExecutesStepsInOrder(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "first", Run: func() error { order = append(order, "first"); return nil }},
		{Name: "second", Run: func() error { order = append(order, "second"); return nil }},
		{Name: "third", Run: func() error { order = append(order, "third"); return nil }},
	}

	require.NoError(t, Run(logger.NewNop(), steps))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	steps := []Step{
		{Name: "first", Run: func() error { order = append(order, "first"); return nil }},
		{Name: "second", Run: func() error { return boom }},
		{Name: "third", Run: func() error { order = append(order, "third"); return nil }},
	}

	err := Run(logger.NewNop(), steps)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "second", stageErr.Stage)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, order, "steps after the failure must not run")
}

func TestStageErrorMessage(t *testing.T) {
	err := &StageError{Stage: "swap", Err: errors.New("device busy")}
	assert.Equal(t, "stage swap: device busy", err.Error())
}
