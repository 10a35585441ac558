package lode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"
)

// Storage backends.
const (
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// DefaultDataset is the dataset id used when none is configured.
const DefaultDataset = "flightlog"

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"reader", "day", "session_id", "record_kind"}

// Options selects and configures a storage backend.
type Options struct {
	// Dataset is the Lode dataset id. Default "flightlog".
	Dataset string
	// Backend is fs, s3 or memory.
	Backend string
	// Path is a directory for fs, "bucket/prefix" for s3.
	Path string
	// Region, Endpoint and UsePathStyle configure s3.
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// DatasetID returns the effective dataset id.
func (o Options) DatasetID() string {
	if o.Dataset == "" {
		return DefaultDataset
	}
	return o.Dataset
}

// Validate checks that the backend is known and has its required settings.
func (o Options) Validate() error {
	switch o.Backend {
	case BackendFS:
		if o.Path == "" {
			return fmt.Errorf("storage path is required for %s backend", BackendFS)
		}
	case BackendS3:
		bucket, _ := ParseS3Path(o.Path)
		if bucket == "" {
			return fmt.Errorf("storage path must be bucket[/prefix] for %s backend", BackendS3)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend %q: must be %s, %s, or %s",
			o.Backend, BackendFS, BackendS3, BackendMemory)
	}
	return nil
}

// Open builds the dataset described by opts.
func Open(ctx context.Context, opts Options) (lode.Dataset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var factory lode.StoreFactory
	switch opts.Backend {
	case BackendFS:
		factory = lode.NewFSFactory(opts.Path)
	case BackendMemory:
		factory = lode.NewMemoryFactory()
	case BackendS3:
		bucket, prefix := ParseS3Path(opts.Path)
		f, err := newS3Factory(ctx, S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       opts.Region,
			Endpoint:     opts.Endpoint,
			UsePathStyle: opts.UsePathStyle,
		})
		if err != nil {
			return nil, WrapInitError(err, opts.DatasetID())
		}
		factory = f
	}
	return NewDataset(opts.DatasetID(), factory)
}

// NewDataset creates a report dataset over factory.
// Use a shared lode.NewMemory() store in tests.
func NewDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	ds, err := lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, WrapInitError(err, dataset)
	}
	return ds, nil
}

// DeriveDay computes the partition day from a session start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(start time.Time) string {
	return start.UTC().Format("2006-01-02")
}

// PartitionPath returns the Hive partition prefix of a session's records.
func PartitionPath(dataset, reader, day, sessionID string) string {
	return fmt.Sprintf("%s/reader=%s/day=%s/session_id=%s", dataset, reader, day, sessionID)
}

// matchesPartitionValue reports whether a Hive path has an exact key=value
// segment, so session_id=a does not match session_id=ab.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// snapshotHas reports whether any file of snap lies in the key=value
// partition. An empty value matches every snapshot.
func snapshotHas(snap *lode.Snapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}
