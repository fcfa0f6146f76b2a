package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/ports"
)

type countingRecalc struct {
	calls atomic.Int32
	err   error
}

func (c *countingRecalc) Recalculate(ctx context.Context) (*Snapshot, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &Snapshot{ComputedAt: time.Now()}, nil
}

// recordingLogger counts error entries.
type recordingLogger struct {
	mockLogger
	errors atomic.Int32
}

func (l *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
	l.errors.Add(1)
}

func TestNewRecalculator_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewRecalculator(ctx, nil, &mockLogger{}, "")
	assert.Error(t, err)

	_, err = NewRecalculator(ctx, &countingRecalc{}, &mockLogger{}, "not a cron spec")
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	r, err := NewRecalculator(ctx, &countingRecalc{}, &mockLogger{}, "")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRecalculator_RunNow(t *testing.T) {
	target := &countingRecalc{}
	r, err := NewRecalculator(context.Background(), target, &mockLogger{}, DefaultRecalcSpec)
	require.NoError(t, err)

	r.RunNow()
	r.RunNow()
	assert.Equal(t, int32(2), target.calls.Load())
}

func TestRecalculator_FailuresAreLogged(t *testing.T) {
	target := &countingRecalc{err: errors.New("db down")}
	logger := &recordingLogger{}
	r, err := NewRecalculator(context.Background(), target, logger, DefaultRecalcSpec)
	require.NoError(t, err)

	r.RunNow()
	assert.Equal(t, int32(1), logger.errors.Load())
}

func TestRecalculator_SkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	target := &countingRecalc{}
	r, err := NewRecalculator(ctx, target, &mockLogger{}, DefaultRecalcSpec)
	require.NoError(t, err)

	cancel()
	r.RunNow()
	assert.Equal(t, int32(0), target.calls.Load())
}

func TestRecalculator_Schedule(t *testing.T) {
	target := &countingRecalc{}
	r, err := NewRecalculator(context.Background(), target, &mockLogger{}, "* * * * * *")
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	assert.False(t, r.Next().IsZero())
	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestJournalService_SatisfiesRecalculator(t *testing.T) {
	svc := newTestService(t, newMockTradeRepo())
	r, err := NewRecalculator(context.Background(), svc, &mockLogger{}, "")
	require.NoError(t, err)

	r.RunNow()
	assert.NotNil(t, svc.LatestSnapshot())
}
