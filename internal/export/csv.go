package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/samit-dev/wisuda/internal/app"
	"github.com/samit-dev/wisuda/internal/store"
)

const timestampFormat = "2006-01-02 15:04:05"

// CSVExporter periodically snapshots the admin view (completed nominations
// plus the vote tally) into CSV files for the organizing committee.
type CSVExporter struct {
	config    *app.Config
	store     store.SubmissionStore
	scheduler *gocron.Scheduler
}

func NewCSVExporter(config *app.Config, submissions store.SubmissionStore) (*CSVExporter, error) {
	if config.Export.Schedule == "" || config.Export.Dir == "" {
		return nil, fmt.Errorf("export schedule and dir must be configured")
	}

	scheduler := gocron.NewScheduler(time.UTC)

	exporter := &CSVExporter{
		config:    config,
		store:     submissions,
		scheduler: scheduler,
	}

	if _, err := scheduler.Cron(config.Export.Schedule).Do(func() {
		if err := exporter.Export(); err != nil {
			logger.Error.Printf("Export failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule export: %w", err)
	}

	scheduler.StartAsync()
	return exporter, nil
}

func (e *CSVExporter) Stop() {
	e.scheduler.Stop()
}

func (e *CSVExporter) Export() error {
	details, err := e.store.ListNominations()
	if err != nil {
		return fmt.Errorf("failed to list nominations: %w", err)
	}

	summary, err := e.store.FetchVoteSummary()
	if err != nil {
		return fmt.Errorf("failed to fetch vote summary: %w", err)
	}

	nominationRows := [][]string{
		{"uuid", "student_name", "student_class", "vote1", "reason1", "vote2", "reason2", "updated_at"},
	}
	for _, d := range details {
		nominationRows = append(nominationRows, []string{
			d.UUID,
			deref(d.StudentName),
			deref(d.Class),
			d.Vote1,
			deref(d.Reason1),
			deref(d.Vote2),
			deref(d.Reason2),
			d.UpdatedAt.UTC().Format(timestampFormat),
		})
	}

	summaryRows := [][]string{{"vote", "total"}}
	for _, s := range summary {
		summaryRows = append(summaryRows, []string{s.Vote, strconv.Itoa(s.Total)})
	}

	if err := writeCSV(filepath.Join(e.config.Export.Dir, "nominations.csv"), nominationRows); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(e.config.Export.Dir, "summary.csv"), summaryRows); err != nil {
		return err
	}

	logger.Info.Printf("Exported %d nominations, %d tally rows", len(details), len(summary))
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
