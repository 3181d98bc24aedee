package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/repositories"
	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/cbodonnell/goban/pkg/state"
)

const endMatchTimeout = 5 * time.Second

type DesyncReportWorker struct {
	repository   repositories.Repository
	reportChan   <-chan *models.DesyncReport
	stateManager state.StateManager
	matchID      string
}

type NewDesyncReportWorkerOptions struct {
	Repository   repositories.Repository
	ReportChan   <-chan *models.DesyncReport
	StateManager state.StateManager
	MatchID      string
}

// NewDesyncReportWorker creates a new DesyncReportWorker.
// The worker saves the desync reports raised by the game loop and
// records the last frame of the match when it stops.
func NewDesyncReportWorker(opts NewDesyncReportWorkerOptions) *DesyncReportWorker {
	return &DesyncReportWorker{
		repository:   opts.Repository,
		reportChan:   opts.ReportChan,
		stateManager: opts.StateManager,
		matchID:      opts.MatchID,
	}
}

// Start blocks until ctx is done or the report channel is closed.
func (w *DesyncReportWorker) Start(ctx context.Context) {
	defer w.endMatch()

	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-w.reportChan:
			if !ok {
				return
			}
			w.saveDesyncReport(ctx, report)
		}
	}
}

func (w *DesyncReportWorker) saveDesyncReport(ctx context.Context, report *models.DesyncReport) {
	report.MatchID = w.matchID
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	if err := w.repository.SaveDesyncReport(ctx, report); err != nil {
		log.Error("Failed to save desync report for frame %d: %v", report.Frame, err)
		return
	}
	log.Debug("Saved desync report %s for frame %d", report.ID, report.Frame)
}

func (w *DesyncReportWorker) endMatch() {
	ctx, cancel := context.WithTimeout(context.Background(), endMatchTimeout)
	defer cancel()

	var lastFrame int32
	snapshot, err := w.stateManager.Get(ctx)
	if err != nil {
		log.Error("Failed to get current snapshot: %v", err)
	} else {
		lastFrame = snapshot.Frame
	}

	if err := w.repository.EndMatch(ctx, w.matchID, time.Now(), lastFrame); err != nil {
		log.Error("Failed to end match %s: %v", w.matchID, err)
	}
}
