package lode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"context deadline", fmt.Errorf("put object: %w", context.DeadlineExceeded), ErrTimeout},
		{"timed out message", errors.New("operation timed out"), ErrTimeout},
		{"fs not exist", fmt.Errorf("open manifest: %w", os.ErrNotExist), ErrNotFound},
		{"fs permission", fmt.Errorf("mkdir reports: %w", os.ErrPermission), ErrPermissionDenied},
		{"AccessDenied", errors.New("AccessDenied: you do not have access"), ErrAccessDenied},
		{"Forbidden", errors.New("Forbidden"), ErrAccessDenied},
		{"HTTP 403", errors.New("received status 403"), ErrAccessDenied},
		{"permission denied", errors.New("permission denied for /data/reports"), ErrPermissionDenied},
		{"EACCES", errors.New("open /tmp/file: EACCES"), ErrPermissionDenied},
		{"no space", errors.New("write /data: no space left on device"), ErrDiskFull},
		{"quota", errors.New("quota exceeded for user"), ErrDiskFull},
		{"no such file", errors.New("no such file or directory"), ErrNotFound},
		{"NoSuchKey", errors.New("NoSuchKey: The specified key does not exist"), ErrNotFound},
		{"NoSuchBucket", errors.New("NoSuchBucket: flight-reports"), ErrNotFound},
		{"SlowDown", errors.New("SlowDown: please reduce request rate"), ErrThrottled},
		{"HTTP 429", errors.New("received status 429"), ErrThrottled},
		{"NoCredentialProviders", errors.New("NoCredentialProviders: no valid providers"), ErrAuth},
		{"ExpiredToken", errors.New("ExpiredToken: the security token has expired"), ErrAuth},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9000: connection refused"), ErrNetwork},
		{"DNS", errors.New("DNS lookup failed for bucket.s3.amazonaws.com"), ErrNetwork},
		{"unknown", errors.New("something completely unexpected happened"), ErrUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStorageError_Chain(t *testing.T) {
	cause := fmt.Errorf("open: %w", os.ErrNotExist)
	err := WrapReadError(cause, "flightlog/snapshot/abc")

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound kind")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("underlying error should stay in the chain")
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "read" || se.Path != "flightlog/snapshot/abc" {
		t.Errorf("StorageError = %+v", se)
	}
	if got := err.Error(); got != "read flightlog/snapshot/abc: not found: open: file does not exist" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap_Nil(t *testing.T) {
	if WrapWriteError(nil, "x") != nil || WrapReadError(nil, "x") != nil || WrapInitError(nil, "x") != nil {
		t.Error("wrapping nil must return nil")
	}
}
