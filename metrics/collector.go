// Package metrics provides process-wide analysis counters.
//
// The Collector accumulates counters across every session of one engine.
// It is a leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Session lifecycle
	SessionsStarted   int64 `json:"sessions_started" yaml:"sessions_started"`
	SessionsCompleted int64 `json:"sessions_completed" yaml:"sessions_completed"`
	SessionsCancelled int64 `json:"sessions_cancelled" yaml:"sessions_cancelled"`
	SessionsRejected  int64 `json:"sessions_rejected" yaml:"sessions_rejected"`

	// Files
	FilesAnalyzed  int64            `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed    int64            `json:"files_failed" yaml:"files_failed"`
	FailedByKind   map[string]int64 `json:"failed_by_kind" yaml:"failed_by_kind"`
	SamplesDecoded int64            `json:"samples_decoded" yaml:"samples_decoded"`

	// Contribution cache
	CacheHits   int64 `json:"cache_hits" yaml:"cache_hits"`
	CacheMisses int64 `json:"cache_misses" yaml:"cache_misses"`

	// Report storage
	ReportWriteSuccess int64 `json:"report_write_success" yaml:"report_write_success"`
	ReportWriteFailure int64 `json:"report_write_failure" yaml:"report_write_failure"`

	// Completion adapter
	AdapterPublishSuccess int64 `json:"adapter_publish_success" yaml:"adapter_publish_success"`
	AdapterPublishFailure int64 `json:"adapter_publish_failure" yaml:"adapter_publish_failure"`

	// Dimensions (informational, set at construction)
	Reader         string `json:"reader" yaml:"reader"`
	StorageBackend string `json:"storage_backend" yaml:"storage_backend"`
	Adapter        string `json:"adapter" yaml:"adapter"`
}

// Collector accumulates analysis counters.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	sessionsStarted   int64
	sessionsCompleted int64
	sessionsCancelled int64
	sessionsRejected  int64

	filesAnalyzed  int64
	filesFailed    int64
	failedByKind   map[string]int64
	samplesDecoded int64

	cacheHits   int64
	cacheMisses int64

	reportWriteSuccess int64
	reportWriteFailure int64

	adapterPublishSuccess int64
	adapterPublishFailure int64

	reader         string
	storageBackend string
	adapter        string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend and adapter may be empty when those surfaces are disabled.
func NewCollector(reader, storageBackend, adapter string) *Collector {
	return &Collector{
		failedByKind:   make(map[string]int64),
		reader:         reader,
		storageBackend: storageBackend,
		adapter:        adapter,
	}
}

func (c *Collector) add(field *int64, n int64) {
	c.mu.Lock()
	*field += n
	c.mu.Unlock()
}

// --- Session lifecycle ---

// IncSessionStarted records an accepted session start.
func (c *Collector) IncSessionStarted() {
	if c == nil {
		return
	}
	c.add(&c.sessionsStarted, 1)
}

// IncSessionCompleted records a session that accounted for every file.
func (c *Collector) IncSessionCompleted() {
	if c == nil {
		return
	}
	c.add(&c.sessionsCompleted, 1)
}

// IncSessionCancelled records a session stopped before completion.
func (c *Collector) IncSessionCancelled() {
	if c == nil {
		return
	}
	c.add(&c.sessionsCancelled, 1)
}

// IncSessionRejected records a start refused by the session limit.
func (c *Collector) IncSessionRejected() {
	if c == nil {
		return
	}
	c.add(&c.sessionsRejected, 1)
}

// --- Files ---

// IncFileAnalyzed records one successfully analyzed file and the number of
// samples decoded from it.
func (c *Collector) IncFileAnalyzed(samples int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesAnalyzed++
	c.samplesDecoded += int64(samples)
	c.mu.Unlock()
}

// IncFileFailed records one failed file under a failure kind.
func (c *Collector) IncFileFailed(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesFailed++
	c.failedByKind[kind]++
	c.mu.Unlock()
}

// --- Contribution cache ---

// IncCacheHit records a file served from the contribution cache.
func (c *Collector) IncCacheHit() {
	if c == nil {
		return
	}
	c.add(&c.cacheHits, 1)
}

// IncCacheMiss records a cache lookup that required decoding.
func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.add(&c.cacheMisses, 1)
}

// --- Report storage ---
// Report counters are per-call. One dataset write with every record of a
// session counts as 1.

// IncReportWriteSuccess records a successful report write.
func (c *Collector) IncReportWriteSuccess() {
	if c == nil {
		return
	}
	c.add(&c.reportWriteSuccess, 1)
}

// IncReportWriteFailure records a failed report write.
func (c *Collector) IncReportWriteFailure() {
	if c == nil {
		return
	}
	c.add(&c.reportWriteFailure, 1)
}

// --- Completion adapter ---

// IncAdapterPublishSuccess records a delivered completion event.
func (c *Collector) IncAdapterPublishSuccess() {
	if c == nil {
		return
	}
	c.add(&c.adapterPublishSuccess, 1)
}

// IncAdapterPublishFailure records a completion event that exhausted retries.
func (c *Collector) IncAdapterPublishFailure() {
	if c == nil {
		return
	}
	c.add(&c.adapterPublishFailure, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all counters.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{FailedByKind: map[string]int64{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	failed := make(map[string]int64, len(c.failedByKind))
	for k, v := range c.failedByKind {
		failed[k] = v
	}

	return Snapshot{
		SessionsStarted:   c.sessionsStarted,
		SessionsCompleted: c.sessionsCompleted,
		SessionsCancelled: c.sessionsCancelled,
		SessionsRejected:  c.sessionsRejected,

		FilesAnalyzed:  c.filesAnalyzed,
		FilesFailed:    c.filesFailed,
		FailedByKind:   failed,
		SamplesDecoded: c.samplesDecoded,

		CacheHits:   c.cacheHits,
		CacheMisses: c.cacheMisses,

		ReportWriteSuccess: c.reportWriteSuccess,
		ReportWriteFailure: c.reportWriteFailure,

		AdapterPublishSuccess: c.adapterPublishSuccess,
		AdapterPublishFailure: c.adapterPublishFailure,

		Reader:         c.reader,
		StorageBackend: c.storageBackend,
		Adapter:        c.adapter,
	}
}
