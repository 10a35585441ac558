package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/justapithecus/flightlog/engine"
	"github.com/justapithecus/flightlog/lode"
	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("csv"); err == nil || !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error should list valid formats, got: %v", err)
	}
}

func testReport() *lode.Report {
	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &lode.Report{
		SessionID: "sess-1",
		Reader:    "tacview",
		Outcome:   types.OutcomeCompletedWithFailures,
		Progress:  types.Progress{Successful: 2, Failed: 1, Total: 3},
		Result: types.AnalysisResult{
			Aircrafts: []types.Aircraft{{
				Name: "F-16C", TotalSeconds: 420, GroundSeconds: 50, Flights: 2,
				Missions: []types.Mission{{Name: "A", Seconds: 120}, {Name: "B", Seconds: 300}},
			}},
			Failures: []string{"/logs/C.zip.acmi: corrupt archive"},
		},
		Metrics:    metrics.Snapshot{FilesAnalyzed: 2, FilesFailed: 1, FailedByKind: map[string]int64{"malformed": 1}},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

func TestRenderer_ReportTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(testReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"sess-1",
		"completed_with_failures",
		"2 succeeded, 1 failed, 3 total",
		"1.5s",
		"Total",
		"F-16C",
		"7.00 minutes", // 420 s total
		"6.17 minutes", // 370 s flight
		"50.00 seconds",
		"2 mns 0 scs",
		"5 mns 0 scs",
		"Failures (1)",
		"/logs/C.zip.acmi: corrupt archive",
		"malformed:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("no-color output contains escape codes:\n%s", got)
	}
}

func TestRenderer_EmptyResultTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(types.AnalysisResult{Aircrafts: []types.Aircraft{}, Failures: []string{}}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "(no aircraft)") || strings.Contains(got, "Failures") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRenderer_SelectionTable(t *testing.T) {
	tests := []struct {
		name string
		sel  engine.Selection
		want []string
	}{
		{
			name: "files",
			sel:  engine.Selection{Dir: "/logs", Reader: "tacview", Files: []string{"/logs/a.zip.acmi", "/logs/b.txt.acmi"}},
			want: []string{"/logs", "Files:", "a.zip.acmi", "b.txt.acmi"},
		},
		{
			name: "error",
			sel:  engine.Selection{Dir: "/missing", Reader: "tacview", Files: []string{}, Error: "failed to read directory"},
			want: []string{"Error:", "failed to read directory"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewRendererWithWriter(FormatTable, true, &buf).Render(tt.sel); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatJSON, false, &buf).Render(testReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded lode.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.SessionID != "sess-1" || len(decoded.Result.Aircrafts) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"total_seconds": 420`) {
		t.Errorf("JSON missing total_seconds:\n%s", buf.String())
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatYAML, false, &buf).Render(testReport()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"session_id: sess-1", "name: F-16C", "C.zip.acmi: corrupt archive"} {
		if !strings.Contains(got, want) {
			t.Errorf("YAML missing %q:\n%s", want, got)
		}
	}
}

func TestRenderer_GenericTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	data := struct {
		Name    string   `json:"name"`
		Tags    []string `json:"tags"`
		Samples []int    `json:"samples"`
		Count   int
	}{"x", []string{"a", "b"}, []int{1, 2, 3, 4}, 3}
	if err := r.Render(data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"name:", "[a, b]", "[4 items]", "count:", "3"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	buf.Reset()
	if err := r.Render([]string{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("empty slice output = %q", buf.String())
	}
}

func TestDurationHelpers(t *testing.T) {
	tests := []struct {
		seconds  float64
		display  string
		detailed string
	}{
		{0, "0.00 seconds", "0.00 scs"},
		{42.5, "42.50 seconds", "42.50 scs"},
		{120, "2.00 minutes", "2 mns 0 scs"},
		{150, "2.50 minutes", "2 mns 30 scs"},
		{3661, "1.02 hours", "1 hrs 1 mns 1 scs"},
		{9000, "2.50 hours", "2 hrs 30 mns 0 scs"},
	}
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			if got := SecondsDisplay(tt.seconds); got != tt.display {
				t.Errorf("SecondsDisplay(%v) = %q, want %q", tt.seconds, got, tt.display)
			}
			if got := DetailedTime(tt.seconds); got != tt.detailed {
				t.Errorf("DetailedTime(%v) = %q, want %q", tt.seconds, got, tt.detailed)
			}
		})
	}
}
