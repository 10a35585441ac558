package lode

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// ErrNoReportFound is returned when no report matches the query.
var ErrNoReportFound = errors.New("no report found")

// QueryLatestReport reconstructs the most recent stored report.
// sessionID and reader filter when non-empty.
func QueryLatestReport(ctx context.Context, ds lode.Dataset, sessionID, reader string) (*Report, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, "snapshots")
	}

	// Snapshots are ordered by creation time.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotHas(snap, "record_kind", RecordKindSummary) ||
			!snapshotHas(snap, "session_id", sessionID) ||
			!snapshotHas(snap, "reader", reader) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("snapshot/%s", snap.ID))
		}

		records := make([]map[string]any, 0, len(data))
		for _, item := range data {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}

		// Manifest paths are a coarse pre-filter; record fields decide.
		for _, rec := range records {
			if rec["record_kind"] != RecordKindSummary {
				continue
			}
			if sessionID != "" && toString(rec["session_id"]) != sessionID {
				continue
			}
			if reader != "" && toString(rec["reader"]) != reader {
				continue
			}
			return assemble(rec, records), nil
		}
	}
	return nil, ErrNoReportFound
}

type positioned[T any] struct {
	pos   int
	value T
}

func sorted[T any](items []positioned[T]) []T {
	sort.SliceStable(items, func(i, j int) bool { return items[i].pos < items[j].pos })
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.value
	}
	return out
}

// assemble rebuilds a report from its summary and sibling records.
func assemble(summary map[string]any, records []map[string]any) *Report {
	id := toString(summary["session_id"])
	r := &Report{
		SessionID: id,
		Reader:    toString(summary["reader"]),
		Outcome:   types.Outcome(toString(summary["outcome"])),
		Progress: types.Progress{
			Successful: toInt(summary["files_succeeded"]),
			Failed:     toInt(summary["files_failed"]),
			Total:      toInt(summary["files_total"]),
		},
		StartedAt:  toTime(summary["started_at"]),
		FinishedAt: toTime(summary["finished_at"]),
	}

	var (
		aircraft []positioned[types.Aircraft]
		missions = map[int][]positioned[types.Mission]{}
		failures []positioned[string]
	)
	for _, rec := range records {
		if toString(rec["session_id"]) != id {
			continue
		}
		switch rec["record_kind"] {
		case RecordKindAircraft:
			aircraft = append(aircraft, positioned[types.Aircraft]{
				pos: toInt(rec["position"]),
				value: types.Aircraft{
					Name:          toString(rec["aircraft"]),
					TotalSeconds:  toFloat(rec["total_seconds"]),
					GroundSeconds: toFloat(rec["ground_seconds"]),
					Flights:       toInt(rec["flights"]),
					Destroyed:     toInt(rec["destroyed"]),
				},
			})
		case RecordKindMission:
			ap := toInt(rec["aircraft_position"])
			missions[ap] = append(missions[ap], positioned[types.Mission]{
				pos:   toInt(rec["position"]),
				value: types.Mission{Name: toString(rec["mission"]), Seconds: toFloat(rec["seconds"])},
			})
		case RecordKindFailure:
			failures = append(failures, positioned[string]{
				pos:   toInt(rec["position"]),
				value: toString(rec["message"]),
			})
		case RecordKindMetrics:
			r.Metrics = metricsFromRecord(rec, r.Reader)
		}
	}

	sort.SliceStable(aircraft, func(i, j int) bool { return aircraft[i].pos < aircraft[j].pos })
	r.Result.Aircrafts = make([]types.Aircraft, len(aircraft))
	for i, a := range aircraft {
		a.value.Missions = sorted(missions[a.pos])
		r.Result.Aircrafts[i] = a.value
	}
	r.Result.Failures = sorted(failures)
	return r
}

func metricsFromRecord(rec map[string]any, reader string) (s metrics.Snapshot) {
	s.Reader = reader
	s.SessionsStarted = toInt64(rec["sessions_started"])
	s.SessionsCompleted = toInt64(rec["sessions_completed"])
	s.SessionsCancelled = toInt64(rec["sessions_cancelled"])
	s.SessionsRejected = toInt64(rec["sessions_rejected"])
	s.FilesAnalyzed = toInt64(rec["files_analyzed"])
	s.FilesFailed = toInt64(rec["files_failed"])
	s.SamplesDecoded = toInt64(rec["samples_decoded"])
	s.CacheHits = toInt64(rec["cache_hits"])
	s.CacheMisses = toInt64(rec["cache_misses"])
	s.ReportWriteSuccess = toInt64(rec["report_write_success"])
	s.ReportWriteFailure = toInt64(rec["report_write_failure"])
	s.AdapterPublishSuccess = toInt64(rec["adapter_publish_success"])
	s.AdapterPublishFailure = toInt64(rec["adapter_publish_failure"])
	s.StorageBackend = toString(rec["storage_backend"])
	s.Adapter = toString(rec["adapter"])

	s.FailedByKind = map[string]int64{}
	switch kinds := rec["failed_by_kind"].(type) {
	case map[string]any:
		for k, v := range kinds {
			s.FailedByKind[k] = toInt64(v)
		}
	case map[string]int64:
		for k, v := range kinds {
			s.FailedByKind[k] = v
		}
	}
	return s
}
