// Package tacview decodes Tacview ACMI flight recordings into per-object
// samples for the tracked pilot.
//
// Both container variants are accepted: the zip-compressed ".zip.acmi" and
// the plain ".txt.acmi". The container is sniffed from the file header, not
// the file name.
package tacview

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/justapithecus/flightlog/types"
)

// Kind is the reader kind for Tacview recordings.
const Kind = "tacview"

// Recognized recording file suffixes.
const (
	SuffixZip  = ".zip.acmi"
	SuffixText = ".txt.acmi"
)

// Decode errors. Use errors.Is for classification.
var (
	// ErrNoAuthor is returned when the recording names no author and no
	// pilot override is configured.
	ErrNoAuthor = errors.New("author not found")
	// ErrMalformed is returned for structurally invalid recordings.
	ErrMalformed = errors.New("malformed recording")
	// ErrEmptyArchive is returned for zip containers without entries.
	ErrEmptyArchive = errors.New("archive contains no recording")
)

var zipMagic = []byte("PK\x03\x04")

// Options configures a Reader.
type Options struct {
	// Pilot overrides the recording author as the tracked pilot name.
	Pilot string
}

// Reader enumerates and decodes Tacview recordings. Safe for concurrent use.
type Reader struct {
	opts Options
}

// NewReader creates a Tacview reader.
func NewReader(opts Options) *Reader {
	return &Reader{opts: opts}
}

// Kind returns the reader kind.
func (r *Reader) Kind() string { return Kind }

// Pilot returns the configured pilot override.
func (r *Reader) Pilot() string { return r.opts.Pilot }

// ValidFiles returns the base names of recognized recordings in dir,
// in directory order.
func (r *Reader) ValidFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsRecording(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// IsRecording reports whether name carries a recognized recording suffix.
func IsRecording(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, SuffixZip) || strings.HasSuffix(lower, SuffixText)
}

// MissionName derives a mission name from a recording file name by
// stripping its recording suffix.
func MissionName(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range []string{SuffixZip, SuffixText, ".acmi"} {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

// Decode opens path and decodes it into a Recording.
func (r *Reader) Decode(ctx context.Context, path string) (*types.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	var rec *types.Recording
	if n == len(zipMagic) && bytes.Equal(head, zipMagic) {
		rec, err = r.decodeZip(ctx, f)
	} else {
		rec, err = r.DecodeStream(ctx, f)
	}
	if err != nil {
		return nil, err
	}
	rec.Path = path
	rec.Mission = MissionName(filepath.Base(path))
	return rec, nil
}

// decodeZip decodes the first entry of a zip-compressed recording.
// Tacview writes exactly one entry per archive.
func (r *Reader) decodeZip(ctx context.Context, f *os.File) (*types.Recording, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat recording: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %q: %w", entry.Name, err)
		}
		rec, err := r.DecodeStream(ctx, rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive entry %q: %w", entry.Name, err)
		}
		return rec, nil
	}
	return nil, ErrEmptyArchive
}

// DecodeStream decodes uncompressed ACMI text from src.
func (r *Reader) DecodeStream(ctx context.Context, src io.Reader) (*types.Recording, error) {
	d := newDecoder(r.opts.Pilot)
	if err := d.run(ctx, src); err != nil {
		return nil, err
	}
	return d.recording(), nil
}
