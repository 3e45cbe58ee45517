package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

var tracer = otel.Tracer("parking-garage-jobs")

// Reporter is the slice of the garage the summary job reads.
type Reporter interface {
	Now() time.Time
	DailySummary(day time.Time) parking.DailySummary
}

// DailyReport logs the garage's daily summary on a cron schedule.
type DailyReport struct {
	cron     *cron.Cron
	reporter Reporter
	log      *logrus.Entry

	mu   sync.Mutex
	last *parking.DailySummary
}

func NewDailyReport(reporter Reporter, schedule string) (*DailyReport, error) {
	log := logging.Logger().WithField("job", "daily_report")

	j := &DailyReport{
		cron:     cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		reporter: reporter,
		log:      log,
	}
	if _, err := j.cron.AddJob(schedule, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Run reports on the day that was current one second ago, so a run at
// midnight covers the day that just closed.
func (j *DailyReport) Run() {
	ctx, span := tracer.Start(context.Background(), "job.daily_report")
	defer span.End()

	day := j.reporter.Now().Add(-time.Second)
	summary := j.reporter.DailySummary(day)

	span.SetAttributes(
		attribute.String("report.date", summary.Date),
		attribute.Int("report.entries", summary.Entries),
		attribute.Int("report.exits", summary.Exits),
	)

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"job":                 "daily_report",
		"date":                summary.Date,
		"entries":             summary.Entries,
		"exits":               summary.Exits,
		"active":              summary.Active,
		"free":                summary.Free,
		"occupied":            summary.Occupied,
		"revenue":             summary.Revenue.StringFixed(2),
		"monthly_passes":      summary.MonthlyPasses,
		"single_entry_passes": summary.SingleEntries,
	}).Info("daily summary")

	j.mu.Lock()
	j.last = &summary
	j.mu.Unlock()
}

// Last returns the most recent summary, if the job has run.
func (j *DailyReport) Last() (parking.DailySummary, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.last == nil {
		return parking.DailySummary{}, false
	}
	return *j.last, true
}

func (j *DailyReport) Start() {
	j.log.Info("starting daily report scheduler")
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running report to finish or ctx
// to expire.
func (j *DailyReport) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.log.Warn("daily report still running at shutdown")
	}
}
