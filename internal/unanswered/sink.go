package unanswered

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// Reason codes for why a question could not be answered
type Reason string

const (
	ReasonSearchError  Reason = "search_error"
	ReasonNoResults    Reason = "no_results"
	ReasonLowScore     Reason = "low_score"
	ReasonInsufficient Reason = "insufficient_information"
)

// Entry is an audit record of a question the system could not answer,
// kept for human review. Entries are emitted outward, never written back
// into the session.
type Entry struct {
	Timestamp time.Time
	SessionID string
	Question  string
	Reason    Reason
	Metadata  map[string]any
}

// Sink is an append-only target for unanswered-question entries.
type Sink interface {
	Append(entry Entry) error
}

// FileSink appends formatted entries to a rotating log file with
// flush-before-acknowledge semantics. Writes go straight to the file; when
// the underlying writer supports it the data is additionally fsynced.
type FileSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewFileSink opens a rotating file sink. The pattern follows strftime,
// e.g. "unanswered_questions.%Y%m%d.log".
func NewFileSink(pattern string) (*FileSink, error) {
	w, err := rotatelogs.New(
		pattern,
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(30*24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open unanswered log: %w", err)
	}
	return &FileSink{w: w}, nil
}

// NewWriterSink wraps an arbitrary writer, mainly for tests.
func NewWriterSink(w io.Writer) *FileSink {
	return &FileSink{w: w}
}

// Append writes one formatted entry and flushes it to stable storage when
// the writer supports syncing.
func (s *FileSink) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, formatEntry(entry)); err != nil {
		return fmt.Errorf("failed to append unanswered entry: %w", err)
	}

	// fsync is not available on every backing store; flushing still helps
	if syncer, ok := s.w.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			return fmt.Errorf("failed to sync unanswered log: %w", err)
		}
	}
	return nil
}

func formatEntry(entry Entry) string {
	divider := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", entry.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Session ID: %s\n", entry.SessionID)
	fmt.Fprintf(&b, "Question: %s\n", entry.Question)
	fmt.Fprintf(&b, "Reason: %s\n", entry.Reason)

	if len(entry.Metadata) > 0 {
		b.WriteString("Metadata:\n")
		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  - %s: %v\n", k, entry.Metadata[k])
		}
	}

	b.WriteString(divider + "\n\n")
	return b.String()
}
