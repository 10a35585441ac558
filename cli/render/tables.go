package render

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"text/tabwriter"
	"time"

	"github.com/justapithecus/flightlog/engine"
	"github.com/justapithecus/flightlog/lode"
	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// TotalRow is the label of the combined row above per-aircraft rows.
const TotalRow = "Total"

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func (r *Renderer) renderTable(data any) error {
	switch d := data.(type) {
	case *lode.Report:
		return r.reportTable(d)
	case lode.Report:
		return r.reportTable(&d)
	case types.AnalysisResult:
		return r.resultTable(d)
	case *types.AnalysisResult:
		return r.resultTable(*d)
	case engine.Selection:
		return r.selectionTable(d)
	case metrics.Snapshot:
		return r.metricsTable(d)
	}

	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.Len() == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}
	return r.renderFields(data)
}

func (r *Renderer) reportTable(rep *lode.Report) error {
	w := newTabWriter(r.out)
	fmt.Fprintf(w, "Session:\t%s\n", rep.SessionID)
	fmt.Fprintf(w, "Reader:\t%s\n", rep.Reader)
	fmt.Fprintf(w, "Outcome:\t%s\n", rep.Outcome)
	fmt.Fprintf(w, "Files:\t%d succeeded, %d failed, %d total\n",
		rep.Progress.Successful, rep.Progress.Failed, rep.Progress.Total)
	fmt.Fprintf(w, "Duration:\t%s\n", rep.Duration().Round(time.Millisecond))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(r.out)

	if err := r.resultTable(rep.Result); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return r.metricsTable(rep.Metrics)
}

func (r *Renderer) resultTable(res types.AnalysisResult) error {
	fmt.Fprintln(r.out, r.title("Aircraft"))
	if len(res.Aircrafts) == 0 {
		fmt.Fprintln(r.out, "(no aircraft)")
	} else {
		w := newTabWriter(r.out)
		fmt.Fprintln(w, "AIRCRAFT\tTOTAL\tFLIGHT\tGROUND\tFLIGHTS\tDESTROYED\tMISSIONS")
		var total types.Aircraft
		for _, a := range res.Aircrafts {
			total.TotalSeconds += a.TotalSeconds
			total.GroundSeconds += a.GroundSeconds
			total.Flights += a.Flights
			total.Destroyed += a.Destroyed
			total.Missions = append(total.Missions, a.Missions...)
		}
		total.Name = TotalRow
		for _, a := range append([]types.Aircraft{total}, res.Aircrafts...) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				a.Name,
				SecondsDisplay(a.TotalSeconds),
				SecondsDisplay(a.FlightSeconds()),
				SecondsDisplay(a.GroundSeconds),
				a.Flights,
				a.Destroyed,
				len(a.Missions),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.title("Missions"))
		w = newTabWriter(r.out)
		fmt.Fprintln(w, "AIRCRAFT\tMISSION\tTIME")
		for _, a := range res.Aircrafts {
			for _, m := range a.Missions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, m.Name, DetailedTime(m.Seconds))
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(res.Failures) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "%s (%d)\n", r.title("Failures"), len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(r.out, "  %s\n", f)
		}
	}
	return nil
}

func (r *Renderer) selectionTable(sel engine.Selection) error {
	w := newTabWriter(r.out)
	fmt.Fprintf(w, "Reader:\t%s\n", sel.Reader)
	fmt.Fprintf(w, "Directory:\t%s\n", sel.Dir)
	if sel.Error != "" {
		fmt.Fprintf(w, "Error:\t%s\n", sel.Error)
		return w.Flush()
	}
	fmt.Fprintf(w, "Files:\t%d\n", len(sel.Files))
	if err := w.Flush(); err != nil {
		return err
	}
	for _, f := range sel.Files {
		fmt.Fprintf(r.out, "  %s\n", filepath.Base(f))
	}
	return nil
}

func (r *Renderer) metricsTable(m metrics.Snapshot) error {
	fmt.Fprintln(r.out, r.title("Metrics"))
	w := newTabWriter(r.out)
	fmt.Fprintf(w, "files analyzed:\t%d\n", m.FilesAnalyzed)
	fmt.Fprintf(w, "files failed:\t%d\n", m.FilesFailed)
	for _, kind := range sortedKeys(m.FailedByKind) {
		fmt.Fprintf(w, "  %s:\t%d\n", kind, m.FailedByKind[kind])
	}
	fmt.Fprintf(w, "samples decoded:\t%d\n", m.SamplesDecoded)
	fmt.Fprintf(w, "cache hits/misses:\t%d/%d\n", m.CacheHits, m.CacheMisses)
	if m.StorageBackend != "" {
		fmt.Fprintf(w, "report writes:\t%d ok, %d failed (%s)\n", m.ReportWriteSuccess, m.ReportWriteFailure, m.StorageBackend)
	}
	if m.Adapter != "" {
		fmt.Fprintf(w, "adapter publishes:\t%d ok, %d failed (%s)\n", m.AdapterPublishSuccess, m.AdapterPublishFailure, m.Adapter)
	}
	return w.Flush()
}
