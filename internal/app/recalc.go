package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tradeJournal/internal/ports"
)

// DefaultRecalcSpec runs every five minutes (cron spec with a seconds field).
const DefaultRecalcSpec = "0 */5 * * * *"

// recalculator is the part of JournalService the scheduler drives.
type recalculator interface {
	Recalculate(ctx context.Context) (*Snapshot, error)
}

// Recalculator refreshes the journal snapshot on a cron schedule.
type Recalculator struct {
	cron    *cron.Cron
	target  recalculator
	logger  ports.Logger
	ctx     context.Context
	timeout time.Duration

	mu      sync.Mutex // Serializes runs so a slow one is never overlapped
	entryID cron.EntryID
}

// NewRecalculator registers target on spec. An empty spec uses DefaultRecalcSpec.
func NewRecalculator(ctx context.Context, target recalculator, logger ports.Logger, spec string) (*Recalculator, error) {
	if target == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Recalculator")
	}
	if spec == "" {
		spec = DefaultRecalcSpec
	}
	r := &Recalculator{
		cron:    cron.New(cron.WithSeconds()),
		target:  target,
		logger:  logger,
		ctx:     ctx,
		timeout: time.Minute,
	}
	id, err := r.cron.AddFunc(spec, r.run)
	if err != nil {
		return nil, fmt.Errorf("register recalculation '%s': %v: %w", spec, err, ports.ErrConfigurationError)
	}
	r.entryID = id
	return r, nil
}

// Start starts the cron scheduler.
func (r *Recalculator) Start() {
	r.cron.Start()
	r.logger.Info(r.ctx, "Recalculation scheduler started", ports.Fields{"next": r.Next().Format(time.RFC3339)})
}

// Stop stops the scheduler and waits for a running recalculation to finish.
func (r *Recalculator) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info(context.Background(), "Recalculation scheduler stopped")
}

// RunNow executes a recalculation immediately (RUN_RECALC_ON_START).
func (r *Recalculator) RunNow() {
	r.run()
}

// Next returns the next scheduled run, zero before Start.
func (r *Recalculator) Next() time.Time {
	return r.cron.Entry(r.entryID).Next
}

func (r *Recalculator) run() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	if _, err := r.target.Recalculate(ctx); err != nil {
		r.logger.Error(ctx, err, "Scheduled recalculation failed")
	}
}
