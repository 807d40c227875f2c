package hetmem

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ResultLog records benchmark results of one session to a JSON file.
type ResultLog struct {
	mu      sync.Mutex
	path    string
	results []Result
}

// NewResultLog creates dir if needed and starts a session file named after
// session and the current time.
func NewResultLog(dir, session string) (*ResultLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	l := &ResultLog{
		path: filepath.Join(dir, fmt.Sprintf("%s_%s.json", session, timestamp)),
	}

	// Write initial file
	if err := l.flush(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the session file.
func (l *ResultLog) Path() string {
	return l.path
}

// Record appends r and rewrites the session file, so a crash loses at most
// the result being recorded.
func (l *ResultLog) Record(r Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append(l.results, r)
	if err := l.flush(); err != nil {
		l.results = l.results[:len(l.results)-1]
		return err
	}
	return nil
}

// flush writes results to disk
func (l *ResultLog) flush() error {
	results := l.results
	if results == nil {
		results = []Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(l.path, data, 0644)
}

// LatestLog returns the most recently modified session file in dir.
func LatestLog(dir string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found in %s", dir)
	}

	var latest string
	var latestTime time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest = file
			latestTime = info.ModTime()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no readable log files in %s", dir)
	}
	return latest, nil
}

// ReadLog loads the results stored in a session file.
func ReadLog(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return results, nil
}

// WriteSummary prints one line per result of the session at path.
func WriteSummary(w io.Writer, path string, results []Result) {
	fmt.Fprintf(w, "\nBenchmark Summary from %s:\n", filepath.Base(path))
	fmt.Fprintln(w, strings.Repeat("=", 78))

	for _, r := range results {
		fmt.Fprintf(w, "%-32s %10.4f ms %10.2f GB/s (%5.1f%% of %.2f GB/s)\n",
			r.Name, r.ElapsedMs, r.EffectiveGBs, efficiency(r), r.TheoreticalGBs)
	}

	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "Total: %d\n", len(results))
}

func efficiency(r Result) float64 {
	if r.TheoreticalGBs == 0 {
		return 0
	}
	return 100 * r.EffectiveGBs / r.TheoreticalGBs
}
