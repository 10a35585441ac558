package lode

import (
	"testing"
	"time"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"fs with path", Options{Backend: BackendFS, Path: "/tmp/x"}, false},
		{"fs without path", Options{Backend: BackendFS}, true},
		{"s3 bucket", Options{Backend: BackendS3, Path: "bucket"}, false},
		{"s3 bucket prefix", Options{Backend: BackendS3, Path: "bucket/reports"}, false},
		{"s3 empty", Options{Backend: BackendS3, Path: "/"}, true},
		{"memory", Options{Backend: BackendMemory}, false},
		{"unknown", Options{Backend: "gcs"}, true},
		{"empty", Options{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_DatasetID(t *testing.T) {
	if got := (Options{}).DatasetID(); got != DefaultDataset {
		t.Errorf("DatasetID() = %q, want %q", got, DefaultDataset)
	}
	if got := (Options{Dataset: "logs"}).DatasetID(); got != "logs" {
		t.Errorf("DatasetID() = %q, want logs", got)
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		in, bucket, prefix string
	}{
		{"bucket", "bucket", ""},
		{"bucket/a/b", "bucket", "a/b"},
		{"/bucket/a/", "bucket", "a"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, p := ParseS3Path(tt.in)
			if b != tt.bucket || p != tt.prefix {
				t.Errorf("ParseS3Path(%q) = %q, %q; want %q, %q", tt.in, b, p, tt.bucket, tt.prefix)
			}
		})
	}
}

func TestS3Config_Validate(t *testing.T) {
	if err := (&S3Config{}).Validate(); err == nil {
		t.Error("expected error for empty bucket")
	}
	if err := (&S3Config{Bucket: "b"}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDeriveDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	start := time.Date(2026, 3, 15, 5, 0, 0, 0, loc)
	if got := DeriveDay(start); got != "2026-03-14" {
		t.Errorf("DeriveDay() = %q, want 2026-03-14", got)
	}
}

func TestMatchesPartitionValue(t *testing.T) {
	path := "flightlog/reader=tacview/day=2026-03-14/session_id=ab/record_kind=summary/data.jsonl"
	tests := []struct {
		key, value string
		want       bool
	}{
		{"session_id", "ab", true},
		{"session_id", "a", false},
		{"record_kind", "summary", true},
		{"record_kind", "aircraft", false},
		{"reader", "tacview", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if got := matchesPartitionValue(path, tt.key, tt.value); got != tt.want {
				t.Errorf("matchesPartitionValue(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
