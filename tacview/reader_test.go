package tacview

import (
	"archive/zip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sortie = "\ufeffFileType=text/acmi/tacview\n" +
	"FileVersion=2.2\n" +
	"0,ReferenceTime=2024-01-01T10:00:00Z\n" +
	"0,Author=Viper\n" +
	"0,Title=Training\\, Day 1\n" +
	"#0\n" +
	"101,T=10|20|100,Type=Air+FixedWing,Name=F-16C_50,Pilot=Viper\n" +
	"202,T=11|21|100,Type=Air+FixedWing,Name=Su-27,Pilot=Bandit\n" +
	"#10\n" +
	"101,T=||\n" +
	"202,T=11.5||\n" +
	"#20\n" +
	"101,T=|20.001|\n" +
	"#30\n" +
	"-101\n"

func writeText(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func writeZip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(strings.TrimSuffix(name, ".zip.acmi") + ".txt.acmi")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestReader_DecodeText(t *testing.T) {
	path := writeText(t, t.TempDir(), "sortie.txt.acmi", sortie)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if rec.Author != "Viper" {
		t.Errorf("Author = %q, want Viper", rec.Author)
	}
	if rec.Title != "Training, Day 1" {
		t.Errorf("Title = %q, want escaped comma unescaped", rec.Title)
	}
	if rec.Path != path {
		t.Errorf("Path = %q, want %q", rec.Path, path)
	}
	if rec.Mission != "sortie" {
		t.Errorf("Mission = %q, want sortie", rec.Mission)
	}
	if rec.Start != 0 || rec.End != 30 {
		t.Errorf("span = [%v, %v], want [0, 30]", rec.Start, rec.End)
	}
	if len(rec.Samples) != 4 {
		t.Fatalf("expected 4 samples for tracked pilot, got %d: %+v", len(rec.Samples), rec.Samples)
	}

	for _, s := range rec.Samples {
		if s.ObjectID != "101" || s.Aircraft != "F-16C_50" {
			t.Errorf("unexpected sample owner: %+v", s)
		}
	}
	if rec.Samples[0].Motion != 0 {
		t.Errorf("spawn sample motion = %v, want 0", rec.Samples[0].Motion)
	}
	if rec.Samples[1].Motion != 0 {
		t.Errorf("unchanged transform motion = %v, want 0", rec.Samples[1].Motion)
	}
	// 0.001 degrees of latitude.
	if got := rec.Samples[2].Motion; math.Abs(got-111.32) > 0.01 {
		t.Errorf("motion = %v, want ~111.32", got)
	}
	if !rec.Samples[3].Removed || rec.Samples[3].Time != 30 {
		t.Errorf("last sample = %+v, want removal at 30", rec.Samples[3])
	}
}

func TestReader_DecodeZip(t *testing.T) {
	path := writeZip(t, t.TempDir(), "sortie.zip.acmi", sortie)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rec.Samples) != 4 {
		t.Errorf("expected 4 samples, got %d", len(rec.Samples))
	}
}

func TestReader_PilotOverride(t *testing.T) {
	path := writeText(t, t.TempDir(), "sortie.txt.acmi", sortie)

	rec, err := NewReader(Options{Pilot: "Bandit"}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// Su-27 writes nothing after #10 and is held to the final frame.
	if len(rec.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(rec.Samples))
	}
	if rec.Samples[0].Aircraft != "Su-27" {
		t.Errorf("Aircraft = %q, want Su-27", rec.Samples[0].Aircraft)
	}
	if held := rec.Samples[2]; held.Time != 30 || held.Motion != 0 || held.Removed {
		t.Errorf("held sample = %+v, want zero motion at 30", held)
	}
}

func TestReader_HeldFrames(t *testing.T) {
	content := "0,Author=Viper\n" +
		"#0\n" +
		"1,T=0|0|0,Name=F-16C_50,Pilot=Viper\n" +
		"9,T=5|5|0,Name=Tanker\n" +
		"#10\n" +
		"1,T=0.01||\n" +
		"#20\n" +
		"9,T=5.01||\n" +
		"#30\n" +
		"9,T=5.02||\n" +
		"#40\n" +
		"1,T=0.02||\n"
	path := writeText(t, t.TempDir(), "held.txt.acmi", content)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	var times []float64
	for _, s := range rec.Samples {
		times = append(times, s.Time)
	}
	want := []float64{0, 10, 30, 40}
	if len(times) != len(want) {
		t.Fatalf("sample times = %v, want %v", times, want)
	}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("sample times = %v, want %v", times, want)
		}
	}
	if rec.Samples[2].Motion != 0 || rec.Samples[2].NoPosition {
		t.Errorf("held sample = %+v, want positioned zero motion", rec.Samples[2])
	}
}

func TestReader_PropertyOnlyLine(t *testing.T) {
	content := "0,Author=Viper\n" +
		"#0\n" +
		"101,T=0|0|0,Name=F-16C_50,Pilot=Viper\n" +
		"#10\n" +
		"101,T=0.01||\n" +
		"#20\n" +
		"101,IAS=200\n" +
		"#30\n" +
		"101,T=0.02||\n"
	path := writeText(t, t.TempDir(), "ias.txt.acmi", content)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rec.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(rec.Samples))
	}
	for i, s := range rec.Samples {
		if s.NoPosition != (i == 2) {
			t.Errorf("sample %d NoPosition = %v", i, s.NoPosition)
		}
	}
}

func TestReader_DestroyedEvent(t *testing.T) {
	content := "0,Author=Viper\n" +
		"#0\n" +
		"a1,T=1|1|1000,Name=A-10C,Pilot=Viper\n" +
		"#5\n" +
		"a1,T=1.01|1|1000\n" +
		"0,Event=Destroyed|a1|\n" +
		"-a1\n"
	path := writeText(t, t.TempDir(), "kill.txt.acmi", content)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rec.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(rec.Samples))
	}
	if !rec.Samples[2].Destroyed {
		t.Errorf("expected destroyed sample, got %+v", rec.Samples[2])
	}
	if !rec.Samples[3].Removed {
		t.Errorf("expected removal sample, got %+v", rec.Samples[3])
	}
}

func TestReader_LineContinuation(t *testing.T) {
	content := "0,Author=Viper\n" +
		"0,Comment=first\\\n" +
		"second\n" +
		"#0\n" +
		"1,T=0|0|0,Name=F-5E,Pilot=Viper\n"
	path := writeText(t, t.TempDir(), "multi.txt.acmi", content)

	rec, err := NewReader(Options{}).Decode(t.Context(), path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rec.Samples) != 1 {
		t.Errorf("expected 1 sample, got %d", len(rec.Samples))
	}
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "missing author",
			content: "0,Title=Nobody\n#0\n1,T=0|0|0,Name=F-5E,Pilot=X\n",
			want:    ErrNoAuthor,
		},
		{
			name:    "empty file",
			content: "",
			want:    ErrNoAuthor,
		},
		{
			name:    "bad frame time",
			content: "0,Author=Viper\n#abc\n",
			want:    ErrMalformed,
		},
		{
			name:    "bad transform",
			content: "0,Author=Viper\n#0\n1,T=x|0|0,Pilot=Viper\n",
			want:    ErrMalformed,
		},
		{
			name:    "short transform",
			content: "0,Author=Viper\n#0\n1,T=0|0,Pilot=Viper\n",
			want:    ErrMalformed,
		},
		{
			name:    "object line without properties",
			content: "0,Author=Viper\n#0\n1\n",
			want:    ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeText(t, t.TempDir(), "bad.txt.acmi", tt.content)
			_, err := NewReader(Options{}).Decode(t.Context(), path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader(Options{}).Decode(t.Context(), filepath.Join(t.TempDir(), "gone.zip.acmi"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReader_CorruptZip(t *testing.T) {
	path := writeText(t, t.TempDir(), "broken.zip.acmi", "PK\x03\x04garbage")
	if _, err := NewReader(Options{}).Decode(t.Context(), path); err == nil {
		t.Error("expected error for corrupt archive")
	}
}

func TestReader_ValidFiles(t *testing.T) {
	dir := t.TempDir()
	writeText(t, dir, "a.zip.acmi", "")
	writeText(t, dir, "b.txt.acmi", "")
	writeText(t, dir, "notes.txt", "")
	writeText(t, dir, "c.acmi.bak", "")
	if err := os.Mkdir(filepath.Join(dir, "d.zip.acmi"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := NewReader(Options{}).ValidFiles(dir)
	if err != nil {
		t.Fatalf("ValidFiles failed: %v", err)
	}
	if len(files) != 2 || files[0] != "a.zip.acmi" || files[1] != "b.txt.acmi" {
		t.Errorf("ValidFiles = %v, want [a.zip.acmi b.txt.acmi]", files)
	}
}

func TestReader_ValidFilesMissingDir(t *testing.T) {
	_, err := NewReader(Options{}).ValidFiles(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMissionName(t *testing.T) {
	tests := map[string]string{
		"Caucasus Strike.zip.acmi": "Caucasus Strike",
		"patrol.txt.acmi":          "patrol",
		"raw.acmi":                 "raw",
		"UPPER.ZIP.ACMI":           "UPPER",
		"other.log":                "other.log",
	}
	for in, want := range tests {
		if got := MissionName(in); got != want {
			t.Errorf("MissionName(%q) = %q, want %q", in, got, want)
		}
	}
}
