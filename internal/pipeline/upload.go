package pipeline

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/event-scout/internal/event"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/store"
)

// UploadFailure records an event the writer did not accept
type UploadFailure struct {
	Event event.Event
	Err   error
}

// UploadReport summarizes an upload
type UploadReport struct {
	Written  int             `json:"written"`
	Failed   int             `json:"failed"`
	Failures []UploadFailure `json:"-"`
}

// Upload writes each event with one Create call, in order.
// A failed write is logged and the remaining events are still written; nothing is retried.
func (p *Pipeline) Upload(ctx context.Context, w store.Writer, events []event.Event) UploadReport {
	var report UploadReport

	for _, evt := range events {
		if err := w.Create(ctx, evt.Fields()); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, UploadFailure{Event: evt, Err: err})
			p.metrics.IncrCounter(MetricStoreFailed)
			p.log.Error("Store write failed", logger.Fields{
				"store": w.Name(),
				"id":    evt.ID,
				"title": evt.Title,
			}, err)
			continue
		}

		report.Written++
		p.metrics.IncrCounter(MetricStoreWritten)
		fmt.Fprintf(p.progress, "Added to %s: %s\n", w.Name(), evt.Title)
	}

	return report
}
