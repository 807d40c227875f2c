package hetmem

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LynnColeArt/hetmem/device"
)

func TestResultLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewResultLog(dir, "session")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(l.Path()), "session_") {
		t.Errorf("unexpected path %s", l.Path())
	}

	// the file exists and is valid before anything is recorded
	if results, err := ReadLog(l.Path()); err != nil || len(results) != 0 {
		t.Fatalf("empty session = %v, %v", results, err)
	}

	want := []Result{
		{Name: "A", ElapsedMs: 1.5, TheoreticalGBs: 51.2, EffectiveGBs: 10, BytesRead: 100, BytesWritten: 50,
			Grid: device.Dim3{X: 4, Y: 1, Z: 1}, Block: device.Dim3{X: 256, Y: 1, Z: 1}, Timestamp: time.Unix(1700000000, 0).UTC()},
		{Name: "B", ElapsedMs: 0.5, TheoreticalGBs: 51.2, EffectiveGBs: 25.6},
	}
	for _, r := range want {
		if err := l.Record(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ReadLog(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].ElapsedMs != want[i].ElapsedMs ||
			got[i].Grid != want[i].Grid || !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	latest, err := LatestLog(dir)
	if err != nil || latest != l.Path() {
		t.Errorf("LatestLog = %q, %v; want %q", latest, err, l.Path())
	}

	var sb strings.Builder
	WriteSummary(&sb, latest, got)
	for _, want := range []string{"Benchmark Summary from session_", "A ", "B ", "50.0% of 51.20 GB/s", "Total: 2"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("summary lacks %q:\n%s", want, sb.String())
		}
	}
}

func TestLatestLogPicksNewest(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "old.json")
	newer := filepath.Join(dir, "new.json")
	for _, p := range []string{older, newer} {
		if err := os.WriteFile(p, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}
	if got, err := LatestLog(dir); err != nil || got != newer {
		t.Errorf("LatestLog = %q, %v; want %q", got, err, newer)
	}
}

func TestLatestLogEmptyDir(t *testing.T) {
	if _, err := LatestLog(t.TempDir()); err == nil {
		t.Error("expected error for directory without logs")
	}
}

func TestReadLogRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(p, []byte("{not json"), 0644)
	if _, err := ReadLog(p); err == nil {
		t.Error("expected parse error")
	}
}

func TestResultLogRejectsInfiniteBandwidth(t *testing.T) {
	l, err := NewResultLog(t.TempDir(), "inf")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Record(Result{Name: "ok", ElapsedMs: 1}); err != nil {
		t.Fatal(err)
	}
	if err := l.Record(Result{Name: "zero time", EffectiveGBs: math.Inf(1)}); err == nil {
		t.Fatal("expected marshal error for +Inf bandwidth")
	}
	if err := l.Record(Result{Name: "after", ElapsedMs: 2}); err != nil {
		t.Fatalf("log unusable after rejected record: %v", err)
	}

	got, err := ReadLog(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "ok" || got[1].Name != "after" {
		t.Errorf("results = %+v", got)
	}
}
