// Package audit appends bid changes to daily CSV files. The log is a flat
// write-only record for human review; nothing in the system reads it back.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Entry is one applied bid change.
type Entry struct {
	Time    time.Time
	Keyword string
	OldBid  int
	NewBid  int
	Reason  string
}

var header = []string{"time", "keyword", "old_bid", "new_bid", "delta", "reason"}

// Logger appends entries to logs/bid_log_YYYY-MM-DD.csv under its
// directory, writing the header once per file. Safe for concurrent use.
type Logger struct {
	dir string

	mu sync.Mutex
}

// NewLogger creates a logger writing under dir (created on demand).
func NewLogger(dir string) *Logger {
	return &Logger{dir: dir}
}

// Append writes the entries to today's log file.
func (l *Logger) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	name := filepath.Join(l.dir, "bid_log_"+time.Now().Format("2006-01-02")+".csv")
	_, statErr := os.Stat(name)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open bid log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for _, e := range entries {
		row := []string{
			e.Time.Format("2006-01-02 15:04:05"),
			e.Keyword,
			strconv.Itoa(e.OldBid),
			strconv.Itoa(e.NewBid),
			strconv.Itoa(e.NewBid - e.OldBid),
			e.Reason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
