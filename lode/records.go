package lode

import (
	"time"

	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// Record kinds. Each is also the record_kind partition value.
const (
	RecordKindSummary  = "summary"
	RecordKindAircraft = "aircraft"
	RecordKindMission  = "mission"
	RecordKindFailure  = "failure"
	RecordKindMetrics  = "metrics"
)

// Report is everything persisted for one finished session.
type Report struct {
	SessionID  string               `json:"session_id" yaml:"session_id"`
	Reader     string               `json:"reader" yaml:"reader"`
	Outcome    types.Outcome        `json:"outcome" yaml:"outcome"`
	Progress   types.Progress       `json:"progress" yaml:"progress"`
	Result     types.AnalysisResult `json:"result" yaml:"result"`
	Metrics    metrics.Snapshot     `json:"metrics" yaml:"metrics"`
	StartedAt  time.Time            `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time            `json:"finished_at" yaml:"finished_at"`
}

// Duration returns the session wall time.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// buildRecords flattens a report into Lode records. Lode's Hive layout
// requires map[string]any with every partition key present.
func buildRecords(r *Report, day string) []any {
	base := func(kind string) map[string]any {
		return map[string]any{
			"record_kind":      kind,
			"contract_version": types.ContractVersion,
			"session_id":       r.SessionID,
			"reader":           r.Reader,
			"day":              day,
		}
	}

	records := make([]any, 0, 2+len(r.Result.Aircrafts)+len(r.Result.Failures))

	summary := base(RecordKindSummary)
	summary["version"] = types.Version
	summary["outcome"] = string(r.Outcome)
	summary["files_total"] = r.Progress.Total
	summary["files_succeeded"] = r.Progress.Successful
	summary["files_failed"] = r.Progress.Failed
	summary["aircraft_count"] = len(r.Result.Aircrafts)
	summary["total_seconds"] = r.Result.TotalSeconds()
	summary["started_at"] = r.StartedAt.UTC().Format(time.RFC3339Nano)
	summary["finished_at"] = r.FinishedAt.UTC().Format(time.RFC3339Nano)
	summary["duration_ms"] = r.Duration().Milliseconds()
	records = append(records, summary)

	for i, a := range r.Result.Aircrafts {
		rec := base(RecordKindAircraft)
		rec["position"] = i
		rec["aircraft"] = a.Name
		rec["total_seconds"] = a.TotalSeconds
		rec["ground_seconds"] = a.GroundSeconds
		rec["flight_seconds"] = a.FlightSeconds()
		rec["flights"] = a.Flights
		rec["destroyed"] = a.Destroyed
		records = append(records, rec)

		for j, m := range a.Missions {
			mrec := base(RecordKindMission)
			mrec["aircraft_position"] = i
			mrec["position"] = j
			mrec["aircraft"] = a.Name
			mrec["mission"] = m.Name
			mrec["seconds"] = m.Seconds
			records = append(records, mrec)
		}
	}

	for i, f := range r.Result.Failures {
		rec := base(RecordKindFailure)
		rec["position"] = i
		rec["message"] = f
		records = append(records, rec)
	}

	m := r.Metrics
	failedByKind := make(map[string]any, len(m.FailedByKind))
	for k, v := range m.FailedByKind {
		failedByKind[k] = v
	}
	mrec := base(RecordKindMetrics)
	mrec["sessions_started"] = m.SessionsStarted
	mrec["sessions_completed"] = m.SessionsCompleted
	mrec["sessions_cancelled"] = m.SessionsCancelled
	mrec["sessions_rejected"] = m.SessionsRejected
	mrec["files_analyzed"] = m.FilesAnalyzed
	mrec["files_failed"] = m.FilesFailed
	mrec["failed_by_kind"] = failedByKind
	mrec["samples_decoded"] = m.SamplesDecoded
	mrec["cache_hits"] = m.CacheHits
	mrec["cache_misses"] = m.CacheMisses
	mrec["report_write_success"] = m.ReportWriteSuccess
	mrec["report_write_failure"] = m.ReportWriteFailure
	mrec["adapter_publish_success"] = m.AdapterPublishSuccess
	mrec["adapter_publish_failure"] = m.AdapterPublishFailure
	mrec["storage_backend"] = m.StorageBackend
	mrec["adapter"] = m.Adapter
	records = append(records, mrec)

	return records
}

// toString returns v as a string, empty for nil or non-strings.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toFloat returns a numeric field. JSONL round-trips numbers as float64;
// in-memory records keep their Go types.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toInt(v any) int { return int(toFloat(v)) }

func toInt64(v any) int64 { return int64(toFloat(v)) }

func toTime(v any) time.Time {
	t, err := time.Parse(time.RFC3339Nano, toString(v))
	if err != nil {
		return time.Time{}
	}
	return t
}
