package lode

import (
	"context"
	"errors"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/flightlog/metrics"
)

// Writer persists session reports.
type Writer struct {
	ds      lode.Dataset
	dataset string
	metrics *metrics.Collector
}

// NewWriter creates a Writer over ds. collector may be nil.
func NewWriter(ds lode.Dataset, dataset string, collector *metrics.Collector) *Writer {
	return &Writer{ds: ds, dataset: dataset, metrics: collector}
}

// Write stores every record of r in a single dataset write and returns the
// session's partition path.
func (w *Writer) Write(ctx context.Context, r *Report) (string, error) {
	if r.SessionID == "" || r.Reader == "" {
		return "", errors.New("report requires session id and reader")
	}

	day := DeriveDay(r.StartedAt)
	path := PartitionPath(w.dataset, r.Reader, day, r.SessionID)

	if _, err := w.ds.Write(ctx, buildRecords(r, day), lode.Metadata{}); err != nil {
		w.metrics.IncReportWriteFailure()
		return "", WrapWriteError(err, path)
	}
	w.metrics.IncReportWriteSuccess()
	return path, nil
}
