package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAllocationService struct {
	calls    int
	deadline bool
	err      error
}

func (m *mockAllocationService) EvaluateFromHistory(ctx context.Context) (*allocation.Run, error) {
	m.calls++
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	return &allocation.Run{
		ID: "run-1",
		Result: &allocation.Result{
			Decisions: []allocation.TickerDecision{
				{Ticker: "NVDA", Outcome: allocation.OutcomeAllocated, RawWeight: 0.3, Weight: 0.3},
				{Ticker: "IBM", Outcome: allocation.OutcomeNoData},
			},
			Sum: 0.3,
		},
	}, nil
}

func TestAllocationJob_Name(t *testing.T) {
	job := NewAllocationJob(&mockAllocationService{}, 0, zerolog.Nop())
	assert.Equal(t, "daily_allocation", job.Name())
}

func TestAllocationJob_Run(t *testing.T) {
	svc := &mockAllocationService{}
	job := NewAllocationJob(svc, time.Second, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, svc.calls)
	assert.True(t, svc.deadline, "evaluation runs under a timeout")
}

func TestAllocationJob_RunError(t *testing.T) {
	evalErr := errors.New("history unavailable")
	job := NewAllocationJob(&mockAllocationService{err: evalErr}, time.Second, zerolog.Nop())

	err := job.Run()
	assert.ErrorIs(t, err, evalErr)
}
