package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

func writeHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yields.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadSnapshotsCSV(t *testing.T) {
	path := writeHistory(t, `timestamp,cmBTC,cmUSD,cmBRL
2024-01-01,520,1250,2150
2024-01-02,505,1300,2080
2024-01-03 12:00:00,500,1400,2000
`)

	snapshots, err := LoadSnapshotsCSV(path)
	if err != nil {
		t.Fatalf("LoadSnapshotsCSV failed: %v", err)
	}

	if len(snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(snapshots))
	}

	first := snapshots[0]
	wantTS := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(wantTS) {
		t.Fatalf("first timestamp = %s, want %s", first.Timestamp, wantTS)
	}
	if first.Yields["cmUSD"] != 1250 {
		t.Fatalf("cmUSD yield = %d, want 1250", first.Yields["cmUSD"])
	}
	if len(first.Yields) != 3 {
		t.Fatalf("assets per snapshot = %d, want 3", len(first.Yields))
	}

	// Datetime layout on the third row.
	wantTS = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	if !snapshots[2].Timestamp.Equal(wantTS) {
		t.Fatalf("third timestamp = %s, want %s", snapshots[2].Timestamp, wantTS)
	}
}

func TestLoadSnapshotsCSVRFC3339(t *testing.T) {
	path := writeHistory(t, `timestamp,cmBRL
2024-06-01T09:30:00Z,2100
`)

	snapshots, err := LoadSnapshotsCSV(path)
	if err != nil {
		t.Fatalf("LoadSnapshotsCSV failed: %v", err)
	}
	want := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if !snapshots[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp = %s, want %s", snapshots[0].Timestamp, want)
	}
	if snapshots[0].Yields[types.AssetID("cmBRL")] != 2100 {
		t.Fatalf("cmBRL = %d, want 2100", snapshots[0].Yields["cmBRL"])
	}
}

func TestLoadSnapshotsCSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{
			name:     "header only",
			content:  "timestamp,cmBTC\n",
			sentinel: ErrEmptyFile,
		},
		{
			name:     "wrong first column",
			content:  "date,cmBTC\n2024-01-01,500\n",
			sentinel: ErrMissingHeader,
		},
		{
			name:     "no asset columns",
			content:  "timestamp\n2024-01-01\n",
			sentinel: ErrMissingHeader,
		},
		{
			name:     "empty file",
			content:  "",
			sentinel: ErrMissingHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnapshotsCSV(writeHistory(t, tt.content))
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestLoadSnapshotsCSVBadRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "non numeric yield",
			content: "timestamp,cmBTC\n2024-01-01,five hundred\n",
		},
		{
			name:    "unparseable timestamp",
			content: "timestamp,cmBTC\n01/02/2024,500\n",
		},
		{
			name:    "fractional yield",
			content: "timestamp,cmBTC\n2024-01-01,500.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSnapshotsCSV(writeHistory(t, tt.content)); err == nil {
				t.Fatal("expected load error, got nil")
			}
		})
	}
}

func TestLoadSnapshotsCSVMissingFile(t *testing.T) {
	if _, err := LoadSnapshotsCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
