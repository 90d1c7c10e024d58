package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kpumuk/lazyscope/internal/series"
)

func scopeExport(rows int) string {
	var b strings.Builder
	b.WriteString("# source: OmnAIScope-DataServer\n")
	b.WriteString("# version: 1.1.1\n")
	b.WriteString("id,scope-a\n")
	b.WriteString("s,V\n")
	for i := range rows {
		fmt.Fprintf(&b, "%g,%d\n", 10+float64(i)/scopeSampleRate, i)
	}
	return b.String()
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    map[string][]series.Sample
	}{
		{
			name:    "scope export is decimated and shifted",
			file:    "export",
			content: scopeExport(250),
			want: map[string][]series.Sample{
				"scope-a": {{Timestamp: 0, Value: 0}, {Timestamp: 1, Value: 100}, {Timestamp: 2, Value: 200}},
			},
		},
		{
			name:    "dummy data",
			file:    "ignored",
			content: "# source: dummy data\n# version: 1.0.0\ntimestamp,value\n1,5\n2,6\n",
			want: map[string][]series.Sample{
				"dummy data": {{Timestamp: 1, Value: 5}, {Timestamp: 2, Value: 6}},
			},
		},
		{
			name:    "legacy export",
			file:    "legacy",
			content: "car,vin,km,maker,dev42,2000\n1\n2\n3\n4\n5\n",
			want: map[string][]series.Sample{
				"dev42": {{Timestamp: 0, Value: 1}, {Timestamp: 1, Value: 3}, {Timestamp: 2, Value: 5}},
			},
		},
		{
			name:    "multi column table",
			file:    "table",
			content: "timestamp,a,b\r\n1000,1,10\r\n1001,2,\r\nbad,3,30\r\n1002,x,40\r\n",
			want: map[string][]series.Sample{
				"a": {{Timestamp: 1000, Value: 1}, {Timestamp: 1001, Value: 2}},
				"b": {{Timestamp: 1000, Value: 10}, {Timestamp: 1002, Value: 40}},
			},
		},
		{
			name:    "single value column takes the file name",
			file:    "pressure",
			content: "timestamp,value\n# comment\n5,1.5\n",
			want: map[string][]series.Sample{
				"pressure": {{Timestamp: 5, Value: 1.5}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseCSV(tt.file, tt.content)
			if err != nil {
				t.Fatalf("ParseCSV: %v", err)
			}
			if len(parsed.Batches) != len(tt.want) {
				t.Fatalf("batches = %+v, want %d channels", parsed.Batches, len(tt.want))
			}
			for _, b := range parsed.Batches {
				want, ok := tt.want[b.Channel]
				if !ok {
					t.Fatalf("unexpected channel %q", b.Channel)
				}
				if len(b.Samples) != len(want) {
					t.Fatalf("channel %q = %+v, want %+v", b.Channel, b.Samples, want)
				}
				for i := range want {
					got := b.Samples[i]
					if math.Abs(got.Timestamp-want[i].Timestamp) > 1e-6 || got.Value != want[i].Value {
						t.Fatalf("channel %q sample %d = %+v, want %+v", b.Channel, i, got, want[i])
					}
				}
			}
		})
	}
}

func TestParseCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "empty", content: "", want: ErrFileEmpty},
		{name: "blank lines", content: "\n\n", want: ErrFileEmpty},
		{name: "unknown tagged source", content: "# source: other\n# version: 9\n1,2\n", want: ErrNoParser},
		{name: "bad sampling rate", content: "a,b,c,d,dev,fast\n1\n", want: ErrInvalidSamplingRate},
		{name: "zero sampling rate", content: "a,b,c,d,dev,0\n1\n", want: ErrInvalidSamplingRate},
		{name: "table without timestamp", content: "time,a\n1,2\n", want: ErrInvalidHeader},
		{name: "scope export without rows", content: "# source: OmnAIScope-DataServer\n# version: 1.1.1\nid,x\n", want: ErrFileEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseCSV("f", tt.content); !errors.Is(err, tt.want) {
				t.Fatalf("ParseCSV error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCSVSourceLoadsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "temp.csv")
	bad := filepath.Join(dir, "broken.csv")
	if err := os.WriteFile(good, []byte("timestamp,value\n1,20\n2,21\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("nonsense\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewCSV(Options{Files: []string{good, bad, filepath.Join(dir, "missing.csv")}})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	if err := src.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(src.Disconnect)

	if !src.Connected() {
		t.Fatalf("Connected() = false after a partial import")
	}
	snap := src.Store().Snapshot()
	if len(snap.Channels["temp"]) != 2 {
		t.Fatalf("channels = %+v", snap.Channels)
	}
	if devices := src.Devices(); len(devices) != 1 || devices[0].UUID != "temp" {
		t.Fatalf("devices = %+v", devices)
	}

	var reported int
	for range 2 {
		select {
		case <-src.Errors():
			reported++
		default:
		}
	}
	if reported != 2 {
		t.Fatalf("reported %d errors, want 2", reported)
	}
}

func TestCSVSourceFailsWhenNothingLoads(t *testing.T) {
	t.Parallel()

	if _, err := NewCSV(Options{}); err == nil {
		t.Fatalf("NewCSV without files succeeded")
	}
	src, err := NewCSV(Options{Files: []string{filepath.Join(t.TempDir(), "missing.csv")}})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	if err := src.Connect(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Connect error = %v, want not-exist", err)
	}
	if src.Connected() {
		t.Fatalf("Connected() = true after a failed import")
	}
}
